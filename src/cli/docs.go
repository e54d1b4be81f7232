// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the certificate path builder.
// It implements a Cobra-based CLI that builds trusted certification paths from a
// target certificate to configured trust anchors, with optional AIA fetching,
// revocation spot checks, and summary, ASCII tree, table, and JSON output formats.
// The package handles file I/O, context cancellation, and integrates with the
// logger package for structured output and error reporting.
package cli
