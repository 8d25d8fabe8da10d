// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	pescan "github.com/corkscan/pescan"
	"github.com/corkscan/pescan/log"
	"github.com/spf13/cobra"
)

var (
	processMemory bool
	exportName    string
	importDLL     string
	importName    string
	language      int
)

// jsonSink is a Sink that accumulates published fields into a plain map,
// suitable for printing as JSON from the dump subcommand.
type jsonSink struct {
	fields map[string]interface{}
}

func newJSONSink() *jsonSink {
	return &jsonSink{fields: make(map[string]interface{})}
}

func (s *jsonSink) SetInt(path string, value int64)    { s.fields[path] = value }
func (s *jsonSink) SetString(path string, value string) { s.fields[path] = value }

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Errorf("JSON marshal error: %v", err)
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return out.String()
}

func loadModule(path string) (*pescan.Module, func() error, error) {
	block, unmap, err := pescan.FileBlock(path)
	if err != nil {
		return nil, nil, err
	}

	m := pescan.NewModule(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelError)))
	var flags pescan.ScanFlags
	if processMemory {
		flags = pescan.ScanFlagsProcessMemory
	}
	if !m.Load([]pescan.MemoryBlock{block}, flags) {
		unmap()
		return nil, nil, fmt.Errorf("no valid PE header found in %s", path)
	}
	return m, unmap, nil
}

func runDump(cmd *cobra.Command, args []string) {
	m, unmap, err := loadModule(args[0])
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer unmap()

	sink := newJSONSink()
	m.Publish(sink)
	fmt.Println(prettyPrint(sink.fields))
}

func runQuery(cmd *cobra.Command, args []string) {
	m, unmap, err := loadModule(args[0])
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer unmap()

	if exportName != "" {
		fmt.Printf("exports(%q) = %d\n", exportName, m.Exports(exportName))
	}
	if importDLL != "" {
		fmt.Printf("imports(%q, %q) = %d\n", importDLL, importName, m.Imports(importDLL, importName))
	}
	if cmd.Flags().Changed("language") {
		fmt.Printf("language(%d) = %d\n", language, m.Language(language))
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pescan",
		Short: "A bounds-checked PE header inspector",
		Long:  "pescan anchors and queries PE headers out of untrusted byte buffers, in the spirit of a malware-scanning engine module.",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pescan version 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump every published field of a bound image as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runDump,
	}
	dumpCmd.Flags().BoolVarP(&processMemory, "process-memory", "p", false, "treat the file as a captured process-memory image")

	queryCmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Run exports/imports/language queries against a file",
		Args:  cobra.ExactArgs(1),
		Run:   runQuery,
	}
	queryCmd.Flags().BoolVarP(&processMemory, "process-memory", "p", false, "treat the file as a captured process-memory image")
	queryCmd.Flags().StringVar(&exportName, "export", "", "check whether this function is exported")
	queryCmd.Flags().StringVar(&importDLL, "import-dll", "", "DLL name for an import check")
	queryCmd.Flags().StringVar(&importName, "import-fn", "", "function name for an import check")
	queryCmd.Flags().IntVar(&language, "language", 0, "resource language identifier to check for")

	rootCmd.AddCommand(versionCmd, dumpCmd, queryCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
