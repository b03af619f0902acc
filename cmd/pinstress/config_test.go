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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadScenario(t *testing.T) {
	s, err := loadScenario("testdata/basic.toml")
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	want := scenario{Workers: 4, Cycles: 250, Persistent: 2, Mutex: "spin"}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("scenario mismatch (-want +got):\n%s", diff)
	}
	if err := s.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadScenarioDefaults(t *testing.T) {
	s, err := loadScenario("testdata/partial.toml")
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	def := defaultScenario()
	def.Workers = 2
	if diff := cmp.Diff(def, s); diff != "" {
		t.Errorf("partial scenario did not keep defaults (-want +got):\n%s", diff)
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	if _, err := loadScenario("testdata/does-not-exist.toml"); err == nil {
		t.Errorf("loadScenario on missing file succeeded")
	}
}

func TestScenarioValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		s    scenario
		ok   bool
	}{
		{"defaults", defaultScenario(), true},
		{"zero workers", scenario{Workers: 0, Cycles: 1, Mutex: "mutex"}, false},
		{"zero cycles", scenario{Workers: 1, Cycles: 0, Mutex: "mutex"}, false},
		{"negative persistent", scenario{Workers: 1, Cycles: 1, Persistent: -1, Mutex: "mutex"}, false},
		{"unknown mutex", scenario{Workers: 1, Cycles: 1, Mutex: "hashlock"}, false},
		{"empty mutex means default", scenario{Workers: 1, Cycles: 1}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.validate()
			if tc.ok && err != nil {
				t.Errorf("validate: %v", err)
			}
			if !tc.ok && err == nil {
				t.Errorf("validate accepted an invalid scenario")
			}
		})
	}
}

func TestRunStressSmall(t *testing.T) {
	s := scenario{Workers: 2, Cycles: 50, Persistent: 3, Mutex: "spin"}
	if err := runStress(s); err != nil {
		t.Errorf("runStress: %v", err)
	}
}

func TestRunDynStressSmall(t *testing.T) {
	s := scenario{Workers: 2, Cycles: 50, Mutex: "mutex"}
	if err := runDynStress(s); err != nil {
		t.Errorf("runDynStress: %v", err)
	}
}
