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
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pinnable/pinlist/pkg/pinlist"
)

// stressCmd implements subcommands.Command for the "stress" command.
type stressCmd struct {
	workers    int
	cycles     int
	persistent int
	mutex      string
	config     string
}

// Name implements subcommands.Command.Name.
func (*stressCmd) Name() string {
	return "stress"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*stressCmd) Synopsis() string {
	return "churn a typed list from many goroutines and verify it"
}

// Usage implements subcommands.Command.Usage.
func (*stressCmd) Usage() string {
	return `stress [flags]
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *stressCmd) SetFlags(f *flag.FlagSet) {
	def := defaultScenario()
	f.IntVar(&c.workers, "workers", def.Workers, "number of churn goroutines")
	f.IntVar(&c.cycles, "cycles", def.Cycles, "attach/detach cycles per worker")
	f.IntVar(&c.persistent, "persistent", def.Persistent, "nodes that must survive the churn")
	f.StringVar(&c.mutex, "mutex", def.Mutex, "lock implementation: mutex or spin")
	f.StringVar(&c.config, "config", "", "TOML scenario file; overrides the other flags")
}

func (c *stressCmd) scenario() (scenario, error) {
	if c.config != "" {
		return loadScenario(c.config)
	}
	return scenario{
		Workers:    c.workers,
		Cycles:     c.cycles,
		Persistent: c.persistent,
		Mutex:      c.mutex,
	}, nil
}

// Execute implements subcommands.Command.Execute.
func (c *stressCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s, err := c.scenario()
	if err == nil {
		err = s.validate()
	}
	if err != nil {
		logrus.Errorf("stress: %v", err)
		return subcommands.ExitUsageError
	}
	if err := runStress(s); err != nil {
		logrus.Errorf("stress: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runStress(s scenario) error {
	log := logrus.WithFields(logrus.Fields{
		"workers": s.Workers,
		"cycles":  s.Cycles,
		"mutex":   s.Mutex,
	})
	log.Info("starting typed stress")

	mu, err := s.newMutex()
	if err != nil {
		return err
	}
	l := pinlist.NewManual[int](mu)

	want := make([]int, 0, s.Persistent)
	for i := 0; i < s.Persistent; i++ {
		v := -(i + 1)
		want = append(want, v)
		n := l.NewNode(v)
		defer n.Detach()
		n.Attach()
	}

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < s.Workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < s.Cycles; i++ {
				v := w*s.Cycles + i
				n := l.NewNode(v)
				h := n.Attach()
				var got int
				h.WithLock(func(p *int) { got = *p })
				if got != v {
					return fmt.Errorf("worker %d: read %d, wanted %d", w, got, v)
				}
				n.Detach()
			}
			logrus.Debugf("worker %d done", w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if got := l.Len(); got != s.Persistent {
		return fmt.Errorf("final length %d, wanted %d", got, s.Persistent)
	}
	var got []int
	l.WithIter(func(it *pinlist.Iter[int]) {
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			got = append(got, *v)
		}
	})
	for i, v := range want {
		if got[i] != v {
			return fmt.Errorf("persistent node %d: got %d, wanted %d", i, got[i], v)
		}
	}

	log.WithField("elapsed", time.Since(start)).Info("typed stress passed")
	return nil
}
