/*
Yarnserve starts a dialogue session server and begins listening for new
connections.

Usage:

	yarnserve [flags]
	yarnserve [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them
using REST protocol. By default, it will listen on localhost:8080. This can
be changed with the --listen/-l flag (or config via environment variable).
The flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, one will be automatically generated and
seeded from crypto/rand. As a consequence, in this mode of operation all
tokens are rendered invalid as soon as the server shuts down. This is
suitable for testing, but a secret must be given via either CLI flags or
environment variable if running in production.

The flags are:

	-v, --version
		Give the current version of the dialogue engine and server and then
		exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, defaults to the value of environment variable
		YARNSPINNER_LISTEN_ADDRESS, and if that is not given, defaults to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing session bearer tokens. If there
		are less than 32 bytes in the secret, it will be repeated until it
		is. The maximum size is 64 bytes. If not given, defaults to the
		value of environment variable YARNSPINNER_TOKEN_SECRET. If no secret
		is specified, a random secret is generated.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/yarnspinner/internal/version"
	"github.com/dekarrin/yarnspinner/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "YARNSPINNER_LISTEN_ADDRESS"
	EnvSecret = "YARNSPINNER_TOKEN_SECRET"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the dialogue engine and server and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (yarnspinner v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if args := pflag.Args(); len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}
	if !strings.Contains(listenAddr, ":") {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(1)
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(listenAddr[strings.LastIndex(listenAddr, ":"):], ":")); err != nil {
		fmt.Fprintf(os.Stderr, "Listen address does not end in a valid port.\nDo -h for help.\n")
		os.Exit(1)
	}

	tokSecret, err := resolveTokenSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	cfg := server.Config{TokenSecret: tokSecret}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL invalid server config: %s", err.Error())
	}

	srv := server.New(cfg)
	log.Printf("INFO  Starting yarnspinner server %s on %s...", version.ServerCurrent, listenAddr)
	if err := srv.ListenAndServe(listenAddr); err != nil {
		log.Fatalf("FATAL server stopped: %s", err.Error())
	}
}

// resolveTokenSecret reads the secret from the flag or environment variable,
// padding it out to 32 bytes by repetition, or generates a random one if
// none was given.
func resolveTokenSecret() ([]byte, error) {
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}

	if tokSecStr == "" {
		tokSecret := make([]byte, 64)
		if _, err := rand.Read(tokSecret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
		return tokSecret, nil
	}

	tokSecret := []byte(tokSecStr)
	for len(tokSecret) < 32 {
		doubled := make([]byte, len(tokSecret)*2)
		copy(doubled, tokSecret)
		copy(doubled[len(tokSecret):], tokSecret)
		tokSecret = doubled
	}
	if len(tokSecret) > 64 {
		return nil, fmt.Errorf("token secret is %d bytes, but it must be <= 64 bytes", len(tokSecret))
	}
	return tokSecret, nil
}
