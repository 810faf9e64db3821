package log

type Event struct{}

func (e *Event) Msg(string) {}

func Fatal() *Event { return &Event{} }

func Panic() *Event { return &Event{} }

func Info() *Event { return &Event{} }
