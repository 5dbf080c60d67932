package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"itmtrace/internal/stimulus"
	"itmtrace/itm"
)

func newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Decode a trace byte stream and print its packets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runDecode(cmd, cfg, path)
		},
	}
	cmd.Flags().Bool("naive", false, "continue past malformed packets instead of stopping at the first one")
	cmd.Flags().Bool("only-gts", false, "set the decoder's only-GTS option; it affects timestamp batching only, and this command prints packets without timestamp batching")
	cmd.Flags().Bool("stimulus-strings", false, "reassemble Instrumentation payloads into per-port lines instead of printing raw packets")
	cmd.Flags().Bool("json", false, "emit NDJSON instead of text")
	cmd.Flags().Bool("stats", false, "print a per-packet-type count table on exit")
	cmd.Flags().Bool("verbose", false, "log decode errors and resync events via logrus instead of discarding them")
	return cmd
}

var (
	malformedColor = color.New(color.FgRed)
	packetColor    = color.New(color.FgGreen)
	lineColor      = color.New(color.FgCyan)
)

func runDecode(cmd *cobra.Command, cfg decodeConfig, path string) error {
	in, err := openInput(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var log itm.Logger
	if cfg.Verbose {
		log = itm.NewLogrusLogger(nil)
	}
	dec := itm.New(itm.Options{OnlyGTS: cfg.OnlyGTS, Log: log})
	var reassembler *stimulus.Reassembler
	if cfg.StimulusStrings {
		reassembler = stimulus.New()
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	counts := map[string]int{}

	reader := bufio.NewReader(in)
	buf := make([]byte, 4096)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			dec.Push(buf[:n])
			if err := drain(dec, cfg, reassembler, enc, out, counts); err != nil && !cfg.Naive {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading input: %w", readErr)
		}
	}
	if reassembler != nil {
		for _, line := range reassembler.Flush() {
			printLine(out, cfg, line)
		}
	}
	if cfg.Stats {
		printStats(out, counts)
	}
	return nil
}

// drain pulls every packet currently decodable out of dec, printing or
// buffering each one. Under the strict (non-naive) policy it stops at the
// first malformed packet, after reporting it, and returns it as an error;
// under --naive every malformed packet is reported and decoding continues.
func drain(dec *itm.Decoder, cfg decodeConfig, reassembler *stimulus.Reassembler, enc *json.Encoder, out io.Writer, counts map[string]int) error {
	for {
		pkt, malformed, ok := dec.Next()
		if !ok {
			return nil
		}
		if malformed != nil {
			counts[fmt.Sprintf("%T", malformed)]++
			printMalformed(out, cfg, enc, malformed)
			if !cfg.Naive {
				return fmt.Errorf("malformed packet: %v", malformed)
			}
			continue
		}
		counts[fmt.Sprintf("%T", pkt)]++
		if reassembler != nil {
			if inst, ok := pkt.(itm.Instrumentation); ok {
				for _, line := range reassembler.Push(inst) {
					printLine(out, cfg, line)
				}
				continue
			}
		}
		printPacket(out, cfg, enc, pkt)
	}
}

func printPacket(out io.Writer, cfg decodeConfig, enc *json.Encoder, pkt itm.TracePacket) {
	if cfg.JSON {
		_ = enc.Encode(pkt)
		return
	}
	fmt.Fprintln(out, packetColor.Sprintf("%+v", pkt))
}

func printMalformed(out io.Writer, cfg decodeConfig, enc *json.Encoder, m itm.MalformedPacket) {
	if cfg.JSON {
		_ = enc.Encode(m)
		return
	}
	fmt.Fprintln(out, malformedColor.Sprintf("%+v", m))
}

func printLine(out io.Writer, cfg decodeConfig, line stimulus.Line) {
	if cfg.JSON {
		_ = json.NewEncoder(out).Encode(line)
		return
	}
	fmt.Fprintln(out, lineColor.Sprintf("[%d] %s", line.Port, line.Text))
}

func printStats(out io.Writer, counts map[string]int) {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"kind", "count"})
	for _, k := range kinds {
		table.Append([]string{k, fmt.Sprintf("%d", counts[k])})
	}
	table.Render()
}
