package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	id3 "honnef.co/go/id3v2"
)

var (
	verbose  bool
	dump     bool
	clearTag bool
	convert  int

	rootCmd = &cobra.Command{
		Use:   "id3print [flags] file...",
		Short: "Print and rewrite the ID3v2 tags of files",
		Long: `id3print prints the frames of the ID3v2 tag at the start of each
file. With --convert or --clear the tag is rewritten in place.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log what the parser and writer do")
	rootCmd.Flags().BoolVar(&dump, "dump", false, "dump the decoded frames in full")
	rootCmd.Flags().BoolVar(&clearTag, "clear", false, "remove the tag")
	rootCmd.Flags().IntVar(&convert, "convert", 0, "save the tag as ID3v2.`version` (3 or 4)")
}

func run(cmd *cobra.Command, args []string) error {
	id3.Logging = id3.LogFlag(verbose)

	var v id3.Version
	switch convert {
	case 0:
	case 3:
		v = id3.Version23
	case 4:
		v = id3.Version24
	default:
		return fmt.Errorf("can't convert to version %d", convert)
	}

	failed := false
	for _, name := range args {
		if err := processFile(cmd, name, v); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, err)
			failed = true
		}
	}
	if failed {
		return errors.New("some files could not be processed")
	}
	return nil
}

func processFile(cmd *cobra.Command, name string, v id3.Version) error {
	out := cmd.OutOrStdout()

	tag, err := id3.Open(name)
	if errors.Is(err, id3.ErrNotFound) {
		fmt.Fprintf(out, "%s: no ID3 tag\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case clearTag:
		tag.Clear()
		return tag.Save(name)
	case v != 0:
		tag.Update(v)
		return tag.Save(name)
	}

	printTag(cmd, name, tag)
	return nil
}

func printTag(cmd *cobra.Command, name string, tag *id3.Tag) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s)\n", name, tag.Version())
	for _, frame := range tag.Frames.Frames() {
		if dump {
			spew.Fdump(out, frame)
			continue
		}

		title, ok := id3.FrameNames[frame.ID()]
		if !ok {
			title = frame.ID()
		}
		if key := frame.Key(); key != frame.ID() {
			title += " (" + key[len(frame.ID())+1:] + ")"
		}
		fmt.Fprintf(out, "%s: %s\n", title, frame.Value())
	}

	for _, f := range tag.UnknownFrames.Frames() {
		fmt.Fprintf(out, "%s: <%d bytes of unknown data>\n", f.ID(), len(f.Data))
	}
	fmt.Fprintln(out)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
