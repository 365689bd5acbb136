//go:build avr && flicker

package main

import "libdb.so/nightlight/effect"

const effectKind = effect.FlickerKind
