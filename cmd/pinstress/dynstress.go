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
	"bytes"
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pinnable/pinlist/pkg/pinlist"
)

// dynStressCmd implements subcommands.Command for the "dynstress" command.
// It churns a type-erased list whose nodes carry arrays of differing widths
// observed as byte slices.
type dynStressCmd struct {
	workers int
	cycles  int
	mutex   string
	config  string
}

// Name implements subcommands.Command.Name.
func (*dynStressCmd) Name() string {
	return "dynstress"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*dynStressCmd) Synopsis() string {
	return "churn a type-erased list from many goroutines and verify the views"
}

// Usage implements subcommands.Command.Usage.
func (*dynStressCmd) Usage() string {
	return `dynstress [flags]
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *dynStressCmd) SetFlags(f *flag.FlagSet) {
	def := defaultScenario()
	f.IntVar(&c.workers, "workers", def.Workers, "number of churn goroutines")
	f.IntVar(&c.cycles, "cycles", def.Cycles, "attach/detach cycles per worker")
	f.StringVar(&c.mutex, "mutex", def.Mutex, "lock implementation: mutex or spin")
	f.StringVar(&c.config, "config", "", "TOML scenario file; overrides the other flags")
}

// Execute implements subcommands.Command.Execute.
func (c *dynStressCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := scenario{Workers: c.workers, Cycles: c.cycles, Mutex: c.mutex}
	if c.config != "" {
		var err error
		if s, err = loadScenario(c.config); err != nil {
			logrus.Errorf("dynstress: %v", err)
			return subcommands.ExitUsageError
		}
	}
	if err := s.validate(); err != nil {
		logrus.Errorf("dynstress: %v", err)
		return subcommands.ExitUsageError
	}
	if err := runDynStress(s); err != nil {
		logrus.Errorf("dynstress: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runDynStress(s scenario) error {
	log := logrus.WithFields(logrus.Fields{
		"workers": s.Workers,
		"cycles":  s.Cycles,
		"mutex":   s.Mutex,
	})
	log.Info("starting dyn stress")

	mu, err := s.newMutex()
	if err != nil {
		return err
	}
	l := pinlist.NewDynManual[[]byte](mu)

	// Two fixed nodes of differing widths anchor the list; every
	// iteration below must observe exactly these views plus whatever the
	// churn has attached at that instant.
	short := pinlist.NewDynNode(l, [2]byte{0xaa, 0xbb}, func(p *[2]byte) []byte { return p[:] })
	defer short.Detach()
	short.Attach()
	long := pinlist.NewDynNode(l, [4]byte{1, 2, 3, 4}, func(p *[4]byte) []byte { return p[:] })
	defer long.Detach()
	long.Attach()

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < s.Workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < s.Cycles; i++ {
				n := pinlist.NewDynNode(l, [4]byte{byte(w), byte(i), byte(i >> 8), 0xee}, func(p *[4]byte) []byte { return p[:] })
				h := n.Attach()
				var ok bool
				h.WithLock(func(p *[4]byte) { ok = p[3] == 0xee })
				if !ok {
					return fmt.Errorf("worker %d cycle %d: payload corrupted", w, i)
				}
				n.Detach()
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < s.Cycles; i++ {
			var sawShort, sawLong, malformed bool
			l.WithIter(func(it *pinlist.DynIter[[]byte]) {
				for v, ok := it.Next(); ok; v, ok = it.Next() {
					switch {
					case bytes.Equal(v, []byte{0xaa, 0xbb}):
						sawShort = true
					case bytes.Equal(v, []byte{1, 2, 3, 4}):
						sawLong = true
					case len(v) != 4 || v[3] != 0xee:
						// Churn views have a fixed shape.
						malformed = true
					}
				}
			})
			if malformed {
				return fmt.Errorf("iteration %d: malformed churn view", i)
			}
			if !sawShort || !sawLong {
				return fmt.Errorf("iteration %d: anchor views missing or torn", i)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if got := l.Len(); got != 2 {
		return fmt.Errorf("final length %d, wanted 2", got)
	}

	log.WithField("elapsed", time.Since(start)).Info("dyn stress passed")
	return nil
}
