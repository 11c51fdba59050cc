package common

import (
	"github.com/ternarybob/banner"
)

// PrintBanner prints the HTTP startup summary. It writes to stdout, so it is
// only used when stdout does not carry the stdio transport.
func PrintBanner(config *Config, endpoint string) {
	b := banner.New().SetStyle(banner.StyleDouble).SetWidth(64)
	b.PrintTopLine()
	b.PrintCenteredText("STOCK MCP")
	b.PrintCenteredText(GetFullVersion())
	b.PrintSeparatorLine()
	b.PrintKeyValue("Endpoint", endpoint, 10)
	b.PrintKeyValue("Database", config.Database.Driver, 10)
	b.PrintKeyValue("Documents", config.Documents.Dir, 10)
	b.PrintBottomLine()
}
