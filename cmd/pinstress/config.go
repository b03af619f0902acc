// Copyright 2026 The pinlist Authors.
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

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/pinnable/pinlist/pkg/smutex"
)

// scenario describes one stress run. Flags override nothing: when a config
// file is given it wins, otherwise the flag values are used as-is.
type scenario struct {
	// Workers is the number of goroutines churning the list.
	Workers int `toml:"workers"`
	// Cycles is the number of attach/detach cycles per worker.
	Cycles int `toml:"cycles"`
	// Persistent is the number of nodes attached before the churn that
	// must survive it unchanged.
	Persistent int `toml:"persistent"`
	// Mutex selects the lock implementation: "mutex" or "spin".
	Mutex string `toml:"mutex"`
}

func defaultScenario() scenario {
	return scenario{
		Workers:    8,
		Cycles:     10000,
		Persistent: 16,
		Mutex:      "mutex",
	}
}

func loadScenario(path string) (scenario, error) {
	s := defaultScenario()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return scenario{}, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	return s, nil
}

func (s scenario) validate() error {
	if s.Workers <= 0 || s.Cycles <= 0 || s.Persistent < 0 {
		return fmt.Errorf("invalid scenario: workers=%d cycles=%d persistent=%d", s.Workers, s.Cycles, s.Persistent)
	}
	if _, err := s.newMutex(); err != nil {
		return err
	}
	return nil
}

func (s scenario) newMutex() (smutex.ScopedMutex, error) {
	switch s.Mutex {
	case "", "mutex":
		return &smutex.Mutex{}, nil
	case "spin":
		return &smutex.SpinMutex{}, nil
	default:
		return nil, fmt.Errorf("unknown mutex implementation %q", s.Mutex)
	}
}
