package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/rowdb/rowd/internal/client"
	"github.com/rowdb/rowd/internal/pkg/util"
)

const (
	cliName string = "rowd"
)

var (
	hostFlag     string
	portFlag     int
	usernameFlag string
)

func init() {
	flag.StringVar(&hostFlag, "a", "127.0.0.1", "Server address to dial")
	flag.IntVar(&portFlag, "p", 4242, "Server port to dial")
	flag.StringVar(&usernameFlag, "u", "", "Username to authenticate with")
}

func printPrompt() {
	fmt.Print(cliName, "> ")
}

func main() {
	flag.Parse()

	if usernameFlag == "" {
		log.Fatal("username is required, pass -u")
	}

	password, err := readPassword()
	if err != nil {
		log.Fatal(err)
	}

	aConn, err := client.Connect(hostFlag, uint16(portFlag), usernameFlag, password)
	if err != nil {
		switch client.Kind(err) {
		case client.KindAuth:
			log.Fatal("login denied")
		default:
			log.Fatalf("cannot connect: %v", err)
		}
	}
	defer aConn.Close()

	fmt.Printf("%s (protocol v%d)\n", aConn.Message(), aConn.Version())

	reader := bufio.NewScanner(os.Stdin)
	printPrompt()

	// REPL (Read-eval-print loop) start
	for reader.Scan() {
		input := strings.TrimSpace(reader.Text())
		switch input {
		case "":
		case ".help":
			fmt.Println(".help    - Show available commands")
			fmt.Println(".ping    - Check if the server is alive")
			fmt.Println(".info    - Show connection details")
			fmt.Println(".exit    - Quit the session and close the program")
		case ".ping":
			if err := aConn.Ping(); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Println("pong")
			}
		case ".info":
			fmt.Printf("server   %s:%d\n", aConn.Host(), aConn.Port())
			fmt.Printf("user     %s\n", aConn.Username())
			fmt.Printf("protocol v%d\n", aConn.Version())
			fmt.Printf("greeting %s\n", aConn.Message())
		case ".exit":
			if err := aConn.Quit(); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			fmt.Println("Goodbye!")
			return
		default:
			if strings.HasPrefix(input, ".") {
				fmt.Printf("Unrecognized meta command: %s\n", input)
				break
			}
			ds, err := aConn.Execute(input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			util.PrintDataSet(os.Stdout, ds)
		}
		printPrompt()
	}
	// Print an additional line if we encountered an EOF character
	fmt.Println()
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}
	// Not a terminal (pipes, scripts), fall back to a plain line read.
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
