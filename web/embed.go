// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web holds the embedded HTML templates.
package web

import "embed"

//go:embed templates
var Templates embed.FS
