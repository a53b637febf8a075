// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"

	cil "github.com/saferwall/cildelta"
)

func prettyPrint(buff []byte) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, buff, "", "\t"); err != nil {
		log.Println("JSON parse error: ", err)
		return string(buff)
	}
	return prettyJSON.String()
}

// mapFile mmaps filename read-only, zero-copy, the same way pedumper
// reads a PE image before parsing it.
func mapFile(filename string) (mmap.MMap, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", filename, err)
	}
	return data, nil
}

// dumpEncLog decodes filename as a raw EncLog table stream and prints
// each row's table, row, and func code.
func dumpEncLog(filename string) {
	data, err := mapFile(filename)
	if err != nil {
		log.Printf("Error: %s", err)
		return
	}
	defer data.Unmap()

	rows, err := cil.DecodeEncLog(data)
	if err != nil {
		log.Printf("Error decoding EncLog: %s", err)
		return
	}

	type encLogEntry struct {
		Table    string `json:"table"`
		Row      uint32 `json:"row"`
		FuncCode string `json:"funcCode"`
	}
	entries := make([]encLogEntry, len(rows))
	for i, r := range rows {
		entries[i] = encLogEntry{
			Table:    cil.MetadataTableName(r.Token.Table()),
			Row:      uint32(r.Token.Row()),
			FuncCode: r.FuncCode.String(),
		}
	}
	out, _ := json.Marshal(entries)
	fmt.Println(prettyPrint(out))
}

// dumpEncMap decodes filename as a raw EncMap table stream and prints
// each token's table and row.
func dumpEncMap(filename string) {
	data, err := mapFile(filename)
	if err != nil {
		log.Printf("Error: %s", err)
		return
	}
	defer data.Unmap()

	tokens, err := cil.DecodeEncMap(data)
	if err != nil {
		log.Printf("Error decoding EncMap: %s", err)
		return
	}

	type encMapEntry struct {
		Table string `json:"table"`
		Row   uint32 `json:"row"`
	}
	entries := make([]encMapEntry, len(tokens))
	for i, t := range tokens {
		entries[i] = encMapEntry{Table: cil.MetadataTableName(t.Table()), Row: uint32(t.Row())}
	}
	out, _ := json.Marshal(entries)
	fmt.Println(prettyPrint(out))
}

func dump(cmd *cobra.Command, args []string) {
	filename := args[0]
	log.Printf("Processing filename %s", filename)

	wantMap, _ := cmd.Flags().GetBool("map")
	if wantMap || strings.HasSuffix(filename, ".encmap") {
		dumpEncMap(filename)
		return
	}
	dumpEncLog(filename)
}

func main() {
	var asMap bool

	var rootCmd = &cobra.Command{
		Use:   "deltadump",
		Short: "An EnC metadata delta inspector",
		Long:  "Dumps the raw EncLog/EncMap table streams a cildelta writer produced",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print("You are using version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps an EncLog or EncMap stream",
		Long:  "Decodes a raw EncLog (default) or EncMap (--map, or a .encmap filename) table stream and prints it as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVarP(&asMap, "map", "", false, "Decode the file as an EncMap stream instead of EncLog")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
