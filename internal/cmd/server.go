package cmd

import (
	"keygrid/internal/engine"
)

func registerServer(r *Registry) {
	r.Register(&Command{Name: "PING", Arity: -1, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		switch len(a) {
		case 0:
			return engine.Ping{}, nil
		case 1:
			return engine.Ping{Message: a[0], HasMsg: true}, nil
		default:
			return nil, errorf("wrong number of arguments for 'ping' command")
		}
	}})
	r.Register(&Command{Name: "ECHO", Arity: 2, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		return engine.Echo{Message: a[0]}, nil
	}})
	r.Register(&Command{Name: "INFO", Arity: -1, ReadOnly: true, Parse: func(a []string) (engine.Operation, error) {
		switch len(a) {
		case 0:
			return engine.Info{}, nil
		case 1:
			return engine.Info{Section: a[0]}, nil
		default:
			return nil, ErrSyntax
		}
	}})
	r.Register(&Command{Name: "SAVE", Arity: 1, Parse: func([]string) (engine.Operation, error) {
		return engine.Save{}, nil
	}})
	r.Register(&Command{Name: "BGSAVE", Arity: 1, Parse: func([]string) (engine.Operation, error) {
		return engine.BGSave{}, nil
	}})
	r.Register(&Command{Name: "LASTSAVE", Arity: 1, ReadOnly: true, Parse: func([]string) (engine.Operation, error) {
		return engine.LastSave{}, nil
	}})
	r.Register(&Command{Name: "QUIT", Arity: -1, ReadOnly: true, Parse: func([]string) (engine.Operation, error) {
		return engine.Reply{Cmd: "QUIT", Result: engine.OK()}, nil
	}})
	// COMMAND describes the registry it is registered in.
	r.Register(&Command{Name: "COMMAND", Arity: -1, ReadOnly: true, Parse: func([]string) (engine.Operation, error) {
		return engine.Reply{Cmd: "COMMAND", Result: r.Describe()}, nil
	}})
}
