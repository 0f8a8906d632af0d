// Copyright 2025 Serge Kamanzi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"math"
	"testing"
)

func TestCalculateBill(t *testing.T) {
	tests := []struct {
		name string
		kwh  float64
		want float64
	}{
		{"zero", 0, 0},
		{"negative clamps to zero", -3, 0},
		{"baseline five", 5, 445},
		{"tier one boundary", 20, 20 * 89},
		{"inside tier two", 30, 20*89 + 10*310},
		{"tier two boundary", 50, 20*89 + 30*310},
		{"inside tier three", 60, 20*89 + 30*310 + 10*369},
		{"fractional", 10.5, 10.5 * 89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBill(tt.kwh)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateBill(%v) = %v, want %v", tt.kwh, got, tt.want)
			}
		})
	}
}

func TestTariffBracket(t *testing.T) {
	tests := []struct {
		kwh  float64
		want string
	}{
		{0, BracketLow},
		{5, BracketLow},
		{20, BracketLow},
		{20.01, BracketMid},
		{50, BracketMid},
		{50.01, BracketHigh},
		{120, BracketHigh},
	}

	for _, tt := range tests {
		if got := TariffBracket(tt.kwh); got != tt.want {
			t.Errorf("TariffBracket(%v) = %q, want %q", tt.kwh, got, tt.want)
		}
	}
}

func TestMarginalRate(t *testing.T) {
	if got := MarginalRate(10); got != TariffTier1Rate {
		t.Errorf("MarginalRate(10) = %v, want %v", got, TariffTier1Rate)
	}
	if got := MarginalRate(35); got != TariffTier2Rate {
		t.Errorf("MarginalRate(35) = %v, want %v", got, TariffTier2Rate)
	}
	if got := MarginalRate(80); got != TariffTier3Rate {
		t.Errorf("MarginalRate(80) = %v, want %v", got, TariffTier3Rate)
	}
}

// The bracket label must always agree with the thresholds the bill uses
func TestBracketConsistentWithBill(t *testing.T) {
	for kwh := 0.5; kwh <= 100; kwh += 0.5 {
		bracket := TariffBracket(kwh)
		rate := MarginalRate(kwh)

		switch bracket {
		case BracketLow:
			if rate != TariffTier1Rate {
				t.Fatalf("kwh %v: bracket %q but marginal rate %v", kwh, bracket, rate)
			}
		case BracketMid:
			if rate != TariffTier2Rate {
				t.Fatalf("kwh %v: bracket %q but marginal rate %v", kwh, bracket, rate)
			}
		case BracketHigh:
			if rate != TariffTier3Rate {
				t.Fatalf("kwh %v: bracket %q but marginal rate %v", kwh, bracket, rate)
			}
		}
	}
}
