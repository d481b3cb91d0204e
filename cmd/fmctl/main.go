// Command fmctl signs up and logs in against the file manager API from a
// terminal, capturing the face image with a local camera.
//
// Usage:
//
//	fmctl [-server URL] [-camera CMD] signup -u USERNAME [-role user|admin] [-face FILE]
//	fmctl [-server URL] [-camera CMD] login  -u USERNAME [-face FILE]
//	fmctl [-camera CMD] capture -o FILE
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Sirpyerre/file-manager/internal/cli"
	"github.com/Sirpyerre/file-manager/internal/infrastructure/capture"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "fmctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("fmctl", flag.ContinueOnError)
	server := global.String("server", envOr("FM_SERVER", "http://localhost:8080"), "file manager API base URL")
	camera := global.String("camera", os.Getenv("FM_CAMERA_CMD"), "command that writes one JPEG frame to stdout")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return fmt.Errorf("missing command: signup, login or capture")
	}

	capturer := capture.NewExecCapturer(capture.ParseCommand(*camera), 0)
	app := cli.NewApp(*server, capturer, os.Stdout)

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "signup":
		fs := flag.NewFlagSet("signup", flag.ContinueOnError)
		username := fs.String("u", "", "username")
		role := fs.String("role", "user", "user or admin")
		facePath := fs.String("face", "", "face image file, captured from the camera when empty")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		password, err := app.Password("Password: ")
		if err != nil {
			return err
		}
		face, err := app.Face(ctx, *facePath)
		if err != nil {
			return err
		}
		return app.SignUp(ctx, *username, password, *role, face)

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		username := fs.String("u", "", "username")
		facePath := fs.String("face", "", "face image file, captured from the camera when empty")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		password, err := app.Password("Password: ")
		if err != nil {
			return err
		}
		face, err := app.Face(ctx, *facePath)
		if err != nil {
			return err
		}
		res, err := app.Login(ctx, *username, password, face)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "token expires at %s\n", res.ExpiresAt.Local().Format("15:04:05"))
		fmt.Println(res.AccessToken)
		return nil

	case "capture":
		fs := flag.NewFlagSet("capture", flag.ContinueOnError)
		outPath := fs.String("o", "face.jpg", "output file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		img, err := capturer.Capture(ctx)
		if err != nil {
			return err
		}
		return os.WriteFile(*outPath, img, 0o600)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
