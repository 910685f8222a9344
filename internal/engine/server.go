package engine

import (
	"context"
	"errors"
)

var errNoPersistence = errors.New("persistence is disabled")

type Ping struct {
	Message string
	HasMsg  bool
}

func (Ping) Name() string { return "PING" }

func (op Ping) exec(context.Context, *Engine) Result {
	if op.HasMsg {
		return Str(op.Message)
	}
	return Status("PONG")
}

type Echo struct{ Message string }

func (Echo) Name() string { return "ECHO" }

func (op Echo) exec(context.Context, *Engine) Result { return Str(op.Message) }

// Info renders server statistics; an empty Section means every section.
type Info struct{ Section string }

func (Info) Name() string { return "INFO" }

func (op Info) exec(_ context.Context, e *Engine) Result {
	if e.info == nil {
		return Str("")
	}
	return Str(e.info(op.Section))
}

// Save writes a snapshot synchronously.
type Save struct{}

func (Save) Name() string { return "SAVE" }

func (op Save) exec(_ context.Context, e *Engine) Result {
	if e.saver == nil {
		return Error(errNoPersistence.Error())
	}
	if err := e.saver.Save(); err != nil {
		return e.fault(op.Name(), err)
	}
	return OK()
}

type BGSave struct{}

func (BGSave) Name() string { return "BGSAVE" }

func (op BGSave) exec(_ context.Context, e *Engine) Result {
	if e.saver == nil {
		return Error(errNoPersistence.Error())
	}
	if err := e.saver.BackgroundSave(); err != nil {
		return Error(err.Error())
	}
	return Status("Background saving started")
}

// LastSave returns the unix time of the last successful save, 0 if none.
type LastSave struct{}

func (LastSave) Name() string { return "LASTSAVE" }

func (LastSave) exec(_ context.Context, e *Engine) Result {
	if e.saver == nil {
		return Int(0)
	}
	t := e.saver.LastSave()
	if t.IsZero() {
		return Int(0)
	}
	return Int(t.Unix())
}

// Reply is an operation whose result is already known, used for commands
// answered entirely by the protocol layer such as COMMAND.
type Reply struct {
	Cmd    string
	Result Result
}

func (op Reply) Name() string { return op.Cmd }

func (op Reply) exec(context.Context, *Engine) Result { return op.Result }
