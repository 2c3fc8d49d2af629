// WireMail CLI - Command line client for WireMail
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/eldtechnologies/wiremail/clients/go/wiremail"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("WIREMAIL_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := wiremail.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "register":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail register <address>")
			os.Exit(1)
		}
		exitOnError(client.Register(os.Args[2]))
		fmt.Printf("Registered: %s\n", os.Args[2])

	case "inbox":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail inbox <address>")
			os.Exit(1)
		}
		emails, err := client.History(os.Args[2])
		exitOnError(err)
		for _, e := range emails {
			ts := e.CreatedAt.Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s -> %s: %s\n", ts, e.From, e.To, e.Body)
		}

	case "send":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail send <from> <to> <body>")
			os.Exit(1)
		}
		from, to, body := os.Args[2], os.Args[3], os.Args[4]

		welcome, err := client.Connect(from)
		exitOnError(err)
		defer client.Close()
		fmt.Println(welcome.Message)

		exitOnError(client.Send(to, body, ""))

		frame, err := client.Next()
		exitOnError(err)
		if frame.Type == wiremail.FrameError {
			fmt.Fprintln(os.Stderr, "Error:", frame.Message)
			os.Exit(1)
		}
		fmt.Println(frame.Message)

	case "listen":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail listen <address>")
			os.Exit(1)
		}
		welcome, err := client.Connect(os.Args[2])
		exitOnError(err)
		defer client.Close()
		fmt.Println(welcome.Message)

		for {
			frame, err := client.Next()
			exitOnError(err)
			if frame.Type == wiremail.FrameNewEmail && frame.Email != nil {
				ts := frame.Email.CreatedAt.Format(time.RFC3339)
				fmt.Printf("[%s] %s: %s\n", ts, frame.Email.From, frame.Email.Body)
			}
		}

	case "delete":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail delete <email_id>")
			os.Exit(1)
		}
		exitOnError(client.Delete(os.Args[2]))
		fmt.Println("Deleted")

	case "upload":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wiremail upload <file>")
			os.Exit(1)
		}
		f, err := os.Open(os.Args[2])
		exitOnError(err)
		defer f.Close()
		ref, err := client.Upload(os.Args[2], f)
		exitOnError(err)
		fmt.Printf("Attachment: %s\n", ref)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`WireMail CLI - Real-time email relay client

Usage: wiremail <command> [options]

Commands:
  register <address>        Register a mailbox
  send <from> <to> <body>   Send an email over the relay
  listen <address>          Stay connected and print incoming email
  inbox <address>           Fetch email history
  delete <email_id>         Delete one email record
  upload <file>             Store an attachment, print its reference

Environment:
  WIREMAIL_URL   Server URL (default: http://localhost:8080)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
