//go:build avr && morse

package main

import "libdb.so/nightlight/effect"

const effectKind = effect.MorseKind
