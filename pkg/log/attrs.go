package log

import "log/slog"

func Module(name string) slog.Attr {
	return slog.String("module", name)
}

func Operator(name string) slog.Attr {
	return slog.String("operator", name)
}

func DAGID[T ~string](id T) slog.Attr {
	return slog.String("dag_id", string(id))
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func Strategy[T ~string](s T) slog.Attr {
	return slog.String("strategy", string(s))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
