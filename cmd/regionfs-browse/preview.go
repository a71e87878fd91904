// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// maxPreviewBytes caps how much of a file's content is shown in the
// preview. The whole file is still read; content past this limit is
// cut off with a notice.
const maxPreviewBytes = 256 * 1024

// highlightPreview syntax-highlights content for terminal display,
// guessing the language from name's extension. Falls back to plain
// text on any lexer or rendering failure.
func highlightPreview(name string, content []byte) string {
	truncated := false
	if len(content) > maxPreviewBytes {
		content = content[:maxPreviewBytes]
		truncated = true
	}

	lexer := lexers.Match(name)
	var buffer strings.Builder
	if lexer != nil {
		if err := quick.Highlight(&buffer, string(content), lexer.Config().Name, "terminal256", "monokai"); err != nil {
			buffer.Reset()
			buffer.WriteString(string(content))
		}
	} else {
		buffer.WriteString(string(content))
	}

	if truncated {
		buffer.WriteString("\n\n[preview truncated]")
	}
	return buffer.String()
}
