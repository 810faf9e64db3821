package forbiddencalls

import (
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func Store(ok bool) {
	if !ok {
		panic("store is not initialised") // want "panic is forbidden"
	}
}

func Config(path string) {
	if path == "" {
		log.Fatal("missing path") // want "log.Fatal is forbidden outside main function"
	}
}

func Shutdown(code int) {
	os.Exit(code) // want "os.Exit is forbidden outside main function"
}

func Logging() {
	zlog.Info().Msg("fine")
	zlog.Fatal().Msg("fatal") // want "zerolog log.Fatal is forbidden outside main function"
	zlog.Panic().Msg("panic") // want "zerolog log.Panic is forbidden outside main function"
}

func Shadowed() {
	panic := func(string) {}
	panic("not the builtin")
}
