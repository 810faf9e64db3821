package forbiddencalls

import (
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func main() {
	zlog.Fatal().Msg("allowed in main")
	log.Fatal("allowed in main")
	go func() {
		os.Exit(1)
	}()
	os.Exit(0)
}

func init() {
	panic("panic forbidden even in init") // want "panic is forbidden"
	log.Fatalf("forbidden in %s", "init") // want "log.Fatalf is forbidden outside main function"
	os.Exit(1)                            // want "os.Exit is forbidden outside main function"
}

type server struct{}

func (server) main() {
	os.Exit(2) // want "os.Exit is forbidden outside main function"
}
