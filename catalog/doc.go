// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog loads the YAML survey definition: page order, the
// fields each page aggregates and requires, tie-break orders, and the
// response-status thresholds. A default catalog is embedded.
package catalog
