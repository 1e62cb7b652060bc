// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	dbcfile "github.com/gowdbc/dbcfile"
)

var (
	all      bool
	verbose  bool
	segments bool
	sample   int
)

func prettyPrint(v interface{}) string {
	buf, err := gojson.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var pretty bytes.Buffer
	if err := gojson.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

type headerView struct {
	Signature       string `json:"signature"`
	TableHash       uint32 `json:"table_hash"`
	LayoutHash      uint32 `json:"layout_hash"`
	RecordCount     uint32 `json:"record_count"`
	RecordSize      uint32 `json:"record_size"`
	FieldCount      uint32 `json:"field_count"`
	MinIndex        uint32 `json:"min_index"`
	MaxIndex        uint32 `json:"max_index"`
	CopyTableLength uint32 `json:"copy_table_length"`
	IndexColumn     int32  `json:"index_column"`
	HasIndexTable   bool   `json:"has_index_table"`
	HasForeignIDs   bool   `json:"has_foreign_ids"`
	HasOffsetMap    bool   `json:"has_offset_map"`
}

func dumpFile(path string, cmd *cobra.Command) {
	log.Printf("processing %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("error reading %s: %v", path, err)
		return
	}

	f, err := dbcfile.OpenBytes(data, &dbcfile.Options{})
	if err != nil {
		log.Printf("error opening %s: %v", path, err)
		return
	}
	defer f.Close()

	hdr := f.Header()
	view := headerView{
		Signature:       hdr.Signature().String(),
		TableHash:       hdr.TableHash(),
		LayoutHash:      hdr.LayoutHash(),
		RecordCount:     hdr.RecordCount(),
		RecordSize:      hdr.RecordSize(),
		FieldCount:      hdr.FieldCount(),
		MinIndex:        hdr.MinIndex(),
		MaxIndex:        hdr.MaxIndex(),
		CopyTableLength: hdr.CopyTableLength(),
		IndexColumn:     hdr.IndexColumn(),
		HasIndexTable:   hdr.HasIndexTable(),
		HasForeignIDs:   hdr.HasForeignIDs(),
		HasOffsetMap:    hdr.HasOffsetMap(),
	}
	fmt.Println(prettyPrint(view))

	wantSample, _ := cmd.Flags().GetInt("sample")
	if wantSample > 0 {
		n := wantSample
		if uint32(n) > hdr.RecordCount() {
			n = int(hdr.RecordCount())
		}
		size := hdr.RecordSize()
		// The Records segment starts right after the magic and the
		// version's fixed-size header.
		var base uint32
		switch hdr.Signature() {
		case dbcfile.SignatureWDBC:
			base = 4 + 16
		case dbcfile.SignatureWDB2:
			base = 4 + 40
		case dbcfile.SignatureWDB5:
			base = 4 + 44
		case dbcfile.SignatureWDC1:
			base = 4 + 60
		}
		for i := 0; i < n; i++ {
			// Raw record bytes: no schema is known to a generic dump, so
			// this prints hex rather than typed fields.
			start := base + uint32(i)*size
			fmt.Printf("record[%d]: %s\n", i, hex.EncodeToString(data[start:start+size]))
		}
	}
}

func dump(cmd *cobra.Command, args []string) {
	path := args[0]
	if !isDirectory(path) {
		dumpFile(path, cmd)
		return
	}

	var files []string
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	for _, file := range files {
		dumpFile(file, cmd)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "dbcdump",
		Short: "A client-data table file parser",
		Long:  "Dumps the header of WDBC/WDB2/WDB5/WDC1 files as JSON and, with --sample, the first raw records as hex",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps the file header",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Accepted; has no effect on the output")
	dumpCmd.Flags().BoolVarP(&segments, "segments", "", false, "Accepted; has no effect, the segment layout is not dumped")
	dumpCmd.Flags().BoolVarP(&all, "all", "", false, "Accepted; has no effect on the output")
	dumpCmd.Flags().IntVarP(&sample, "sample", "", 0, "Print the first N raw records as hex")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
