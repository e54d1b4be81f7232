// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package report renders path building results for human and machine
// consumption. It provides a markdown table of all attempted paths, an ASCII
// tree of a single path, and a structured JSON document for external tools.
package report
