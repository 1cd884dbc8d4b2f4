package chatlog

import (
	"strings"
	"time"
)

// The exporter writes metadata and message times in different layouts.
const (
	metadataTimeLayout = "01/02/2006 15:04:05"
	messageTimeLayout  = "2006/01/02 15:04:05"
)

func parseMetadataTime(s string) (time.Time, error) {
	return time.ParseInLocation(metadataTimeLayout, strings.TrimSpace(s), time.Local)
}

func parseMessageTime(s string) (time.Time, error) {
	return time.ParseInLocation(messageTimeLayout, strings.TrimSpace(s), time.Local)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
