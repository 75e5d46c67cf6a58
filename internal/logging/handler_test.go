// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"toolshed/internal/store"
	"toolshed/internal/testutil"
)

func TestEventLogHandlerMirrorsWarnings(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(testutil.TestLogger().Handler(), db))

	logger.Info("routine startup")
	logger.Warn("disk filling up", "category", "storage", "free_mb", "120")
	logger.Error("upstream failed")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want warn and error only", len(events))
	}

	// Newest first.
	if events[0].Level != store.EventLevelError || events[0].Message != "upstream failed" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Level != store.EventLevelWarning || events[1].Category != "storage" {
		t.Errorf("events[1] = %+v", events[1])
	}
	if !events[1].Metadata.Valid || !strings.Contains(events[1].Metadata.String, "free_mb") {
		t.Errorf("metadata = %+v, want the remaining attrs as JSON", events[1].Metadata)
	}
}

func TestEventLogHandlerBelowThreshold(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(testutil.TestLogger().Handler(), db))
	logger.Info("nothing to see")
	logger.Debug("noise")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want none below WARN", len(events))
	}
}
