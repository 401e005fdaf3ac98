package tui

import (
	"fmt"
	"strconv"
	"strings"

	"planilhas/types"
)

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdNewSession
	cmdCount
	cmdFile
	cmdAlias
	cmdSheet
	cmdClear
	cmdAuto
	cmdDownload
	cmdHelp
	cmdQuit
)

// command is one parsed input line. Slot is zero-based.
type command struct {
	kind commandKind
	slot int
	arg  string
	on   bool
	n    int
}

const helpText = `/file N PATH   attach a file to slot N
/alias N NAME  set the alias of slot N
/sheet N NAME  select a worksheet (empty clears)
/clear N       detach the file from slot N
/count N       use N upload slots (1-5)
/auto on|off   save delivered files automatically
/download URL  fetch a result link
/new           start a new session
/quit          exit
anything else is sent as the instruction`

// parseCommand interprets one line typed at the prompt.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{kind: cmdSubmit, arg: line}, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/new":
		return command{kind: cmdNewSession}, nil
	case "/help", "/?":
		return command{kind: cmdHelp}, nil
	case "/quit", "/exit":
		return command{kind: cmdQuit}, nil
	case "/count", "/slots":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return command{}, fmt.Errorf("usage: %s N", name)
		}
		return command{kind: cmdCount, n: n}, nil
	case "/auto":
		switch strings.ToLower(rest) {
		case "on", "1", "true":
			return command{kind: cmdAuto, on: true}, nil
		case "off", "0", "false":
			return command{kind: cmdAuto, on: false}, nil
		}
		return command{}, fmt.Errorf("usage: /auto on|off")
	case "/download":
		if rest == "" {
			return command{}, fmt.Errorf("usage: /download URL")
		}
		return command{kind: cmdDownload, arg: rest}, nil
	case "/file", "/alias", "/sheet", "/clear":
		slotArg, value, _ := strings.Cut(rest, " ")
		n, err := strconv.Atoi(slotArg)
		if err != nil || n < types.MinSlots || n > types.MaxSlots {
			return command{}, fmt.Errorf("slot must be %d..%d", types.MinSlots, types.MaxSlots)
		}
		c := command{slot: n - 1, arg: strings.TrimSpace(value)}
		switch name {
		case "/file":
			c.kind = cmdFile
			if c.arg == "" {
				return command{}, fmt.Errorf("usage: /file N PATH")
			}
		case "/alias":
			c.kind = cmdAlias
		case "/sheet":
			c.kind = cmdSheet
		case "/clear":
			c.kind = cmdClear
		}
		return c, nil
	}
	return command{}, fmt.Errorf("unknown command %s, try /help", name)
}
