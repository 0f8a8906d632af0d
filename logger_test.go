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
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func capturedLogger(buf *bytes.Buffer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(buf, nil))}
}

func TestWithHouseholdMasksID(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.WithHousehold("HH-SECRET-42").Info("forecast requested")

	out := buf.String()
	if strings.Contains(out, "HH-SECRET-42") {
		t.Errorf("full household ID leaked into logs: %s", out)
	}
	if !strings.Contains(out, "HH-SEC***") {
		t.Errorf("masked household ID missing from logs: %s", out)
	}
}

func TestWithHouseholdShortIDKeptWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.WithHousehold("HH-1").Info("forecast requested")

	if !strings.Contains(buf.String(), "household_id=HH-1") {
		t.Errorf("short household ID should pass through unmasked: %s", buf.String())
	}
}
