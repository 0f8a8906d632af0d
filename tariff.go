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

// CalculateBill computes the monthly bill in RWF for a consumption figure
// using the fixed three-tier residential tariff. Each tier's rate applies
// only to the kWh falling inside that tier.
func CalculateBill(kwh float64) float64 {
	if kwh <= 0 {
		return 0
	}

	if kwh <= TariffTier1Limit {
		return kwh * TariffTier1Rate
	}

	if kwh <= TariffTier2Limit {
		return TariffTier1Limit*TariffTier1Rate + (kwh-TariffTier1Limit)*TariffTier2Rate
	}

	return TariffTier1Limit*TariffTier1Rate +
		(TariffTier2Limit-TariffTier1Limit)*TariffTier2Rate +
		(kwh-TariffTier2Limit)*TariffTier3Rate
}

// TariffBracket returns the bracket label for a consumption figure, using
// the same thresholds as CalculateBill
func TariffBracket(kwh float64) string {
	switch {
	case kwh <= TariffTier1Limit:
		return BracketLow
	case kwh <= TariffTier2Limit:
		return BracketMid
	default:
		return BracketHigh
	}
}

// MarginalRate returns the RWF/kWh rate charged for the next unit consumed
// at the given consumption level
func MarginalRate(kwh float64) float64 {
	switch {
	case kwh <= TariffTier1Limit:
		return TariffTier1Rate
	case kwh <= TariffTier2Limit:
		return TariffTier2Rate
	default:
		return TariffTier3Rate
	}
}
