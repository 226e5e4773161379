package mcpserver

// BodyFormatContract describes how article body text is interpreted, so
// that LLM consumers can read the plain-text bodies returned by
// read_article and write analysis text that formats cleanly.
const BodyFormatContract = `# Ledgr Body Format

Article bodies are plain text processed line by line. There is no general
Markdown support; only the constructs below are recognized.

## Wrappers

Before splitting into lines, the body is unwrapped in this order:

1. One pair of surrounding double quotes is removed when both are present.
2. A surrounding code fence (` + "```" + `, optional language tag, optional newline)
   is removed when both the opening and the closing fence are present.
3. Every literal ` + "`\\n`" + ` escape becomes a line break.

## Lines

- ` + "`## text`" + ` is a section heading. The space after the marker is required.
- ` + "`### text`" + ` is a sub-heading.
- An empty or whitespace-only line is vertical space.
- Anything else is a paragraph. Text between ` + "`**`" + ` pairs is emphasized;
  an unmatched ` + "`**`" + ` stays literal.

Lines are never dropped, merged or reordered.

## Example

` + "```" + `text
## Summary
The team shipped **three** releases.

### Risks
Hiring is slow.
` + "```" + `
`
