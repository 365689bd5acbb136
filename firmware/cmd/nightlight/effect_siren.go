//go:build avr && siren

package main

import "libdb.so/nightlight/effect"

const effectKind = effect.SirenKind
