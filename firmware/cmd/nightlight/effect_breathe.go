//go:build avr && !flicker && !siren && !morse

package main

import "libdb.so/nightlight/effect"

const effectKind = effect.BreatheKind
