// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uniqueid mints short plugin identifiers.
package uniqueid

import (
	"math/rand/v2"
	"sync"
)

const (
	// Alphabet holds the ASCII letters and digits
	Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of characters in a generated identifier
	Length = 4
)

// 🎲 Generator draws identifiers uniformly from Alphabet. Identifiers are not
// checked for collisions.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// 🏭 New creates a generator. A nil r uses the runtime's auto-seeded source.
func New(r *rand.Rand) *Generator {
	return &Generator{rnd: r}
}

// Generate returns Length independent draws from Alphabet.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b [Length]byte
	for i := range b {
		b[i] = Alphabet[g.intN(len(Alphabet))]
	}
	return string(b[:])
}

func (g *Generator) intN(n int) int {
	if g.rnd == nil {
		return rand.IntN(n)
	}
	return g.rnd.IntN(n)
}
