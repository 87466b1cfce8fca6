package app

import (
	"fmt"
	"strings"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe は学習記録APIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate はusers/study_sessionsのマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中サーバーの /health を確認する。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp はサブコマンドの一覧を表示する。
	CommandHelp Command = "help"
)

// commandSummaries は使い方表示に出すサブコマンドと説明。表示順を保つためスライスで持つ。
var commandSummaries = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "start the HTTP API (default)"},
	{CommandMigrate, "apply database migrations and exit"},
	{CommandHealthcheck, "GET http://localhost:$SERVER_PORT/health, exit non-zero unless 200"},
	{CommandHelp, "show this message"},
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	case "help", "-h", "--help":
		return CommandHelp
	default:
		return CommandServe
	}
}

// Usage はサブコマンドの一覧を返す。
func Usage() string {
	var b strings.Builder
	b.WriteString("usage: studytracker [command]\n\ncommands:\n")
	for _, c := range commandSummaries {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.summary)
	}
	return b.String()
}
