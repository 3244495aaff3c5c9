package vcs

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed commit.txt
var CommitId string

func GetCommit() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return strings.TrimSpace(CommitId)
}

func GetSignature() string {
	commit := GetCommit()
	if commit == "" {
		commit = "unknown"
	}
	return "econtent/" + commit
}
