package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"
	"unsafe"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var (
	runConfig = new(mainConfig)
	build     string
	commands  [][]string
)

func initFlags() {
	addFlag(&runConfig.base, []string{"-base", "-u", "--base"}, defaultBase, "Service base URL")
	addFlag(&runConfig.passCode, []string{"-password", "--password"}, "", "Share password (prompted if omitted)")
	addFlag(&runConfig.debugMode, []string{"-verbose", "-v", "--verbose"}, false, "Verbose Mode")
	addFlag(&runConfig.silentMode, []string{"-silent", "-s", "--silent"}, false, "Hide progress bar")
	addFlag(&runConfig.version, []string{"-version", "--version"}, false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()
}

func main() {
	initFlags()
	args := flag.Args()

	if runConfig.version {
		printVersion()
		return
	}
	if runConfig.debugMode {
		log.SetTimeFormat("2006-01-02 15:04:05")
		log.SetLevel(log.DebugLevel)
		log.Debugf("config = %+v", runConfig)
		log.Debugf("args = %s", args)
	}
	if len(args) == 0 {
		printUsage()
		return
	}
	if args[0] != "upload" || len(args) != 3 {
		printUsage()
		os.Exit(1)
	}

	if err := handleUpload(args[1], args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleUpload(token, filePath string) error {
	if !isExist(filePath) {
		return errFileNotFound
	}
	password := runConfig.passCode
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}
	entry, err := newShareClient(runConfig.base, token).run(filePath, password)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s %d\n", entry.ID, entry.Name, entry.Size)
	return nil
}

// promptPassword reads the share password from the terminal without echo.
// Any string goes through as-is, empty included; the service is the only
// judge of what a valid password is.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func printUsage() {
	fmt.Printf("\nUsage:\n\n  %s [options] upload TOKEN FILEPATH\n\n", os.Args[0])
	fmt.Printf("Options:\n\n")
	for _, val := range commands {
		s := fmt.Sprintf("  %s %s", val[0], val[1])
		block := strings.Repeat(" ", 30-len(s))
		fmt.Printf("%s%s%s\n", s, block, val[2])
	}
	fmt.Printf("\n")
}

func printVersion() {
	version := fmt.Sprintf("\nseafile-share-uploader\n"+
		"Build: %s\n", build)
	fmt.Println(version)
}

func addFlag(p interface{}, cmd []string, val interface{}, usage string) {
	s := []string{strings.Join(cmd[1:], ", "), "", usage}
	ptr := unsafe.Pointer(reflect.ValueOf(p).Pointer())
	for _, item := range cmd {
		switch val.(type) {
		case int:
			s[1] = "int"
			flag.IntVar((*int)(ptr), item[1:], val.(int), usage)
		case string:
			s[1] = "string"
			flag.StringVar((*string)(ptr), item[1:], val.(string), usage)
		case bool:
			flag.BoolVar((*bool)(ptr), item[1:], val.(bool), usage)
		}
	}
	commands = append(commands, s)
}
