package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/recalc/engine"
	log "github.com/sirupsen/logrus"
)

var (
	summary = "recalc"
	help    = "inspect and edit JSON workbooks from the command line"
)

func main() {
	var (
		set  = cli.NewFlagSet("recalc")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"info"}, &infoCmd)
	root.Register([]string{"get"}, &getCmd)
	root.Register([]string{"set"}, &setCmd)
	root.Register([]string{"sheet"}, &sheetCmd)
	root.Register([]string{"remove"}, &removeCmd)
	root.Register([]string{"rename"}, &renameCmd)
	root.Register([]string{"move"}, &moveCmd)
	root.Register([]string{"copy"}, &copyCmd)
	root.Register([]string{"sort"}, &sortCmd)
	return root
}

var infoCmd = cli.Command{
	Name:    "info",
	Summary: "list the sheets of a workbook with their extents",
	Usage:   "info <workbook>",
	Handler: &InfoCommand{},
}

var getCmd = cli.Command{
	Name:    "get",
	Alias:   []string{"show"},
	Summary: "print the value and contents of a cell",
	Usage:   "get <workbook> <sheet> <cell>",
	Handler: &GetCommand{},
}

var setCmd = cli.Command{
	Name:    "set",
	Summary: "set the contents of a cell",
	Usage:   "set [-o file] <workbook> <sheet> <cell> [contents]",
	Handler: &SetCommand{},
}

var sheetCmd = cli.Command{
	Name:    "sheet",
	Alias:   []string{"new"},
	Summary: "add a sheet to a workbook, creating the file when needed",
	Usage:   "sheet [-o file] <workbook> [name]",
	Handler: &SheetCommand{},
}

var removeCmd = cli.Command{
	Name:    "remove",
	Alias:   []string{"rm"},
	Summary: "remove a sheet from a workbook",
	Usage:   "remove [-o file] <workbook> <sheet>",
	Handler: &RemoveCommand{},
}

var renameCmd = cli.Command{
	Name:    "rename",
	Alias:   []string{"mv"},
	Summary: "rename a sheet, rewriting the formulas that reference it",
	Usage:   "rename [-o file] <workbook> <sheet> <name>",
	Handler: &RenameCommand{},
}

var moveCmd = cli.Command{
	Name:    "move",
	Summary: "move a cell area, shifting relative references",
	Usage:   "move [-o file] [-t sheet] <workbook> <sheet> <start:end> <target>",
	Handler: &TransferCommand{Move: true},
}

var copyCmd = cli.Command{
	Name:    "copy",
	Alias:   []string{"cp"},
	Summary: "copy a cell area, shifting relative references",
	Usage:   "copy [-o file] [-t sheet] <workbook> <sheet> <start:end> <target>",
	Handler: &TransferCommand{},
}

var sortCmd = cli.Command{
	Name:    "sort",
	Summary: "sort the rows of a cell area on one or more columns",
	Usage:   "sort [-o file] <workbook> <sheet> <start:end> <cols>",
	Handler: &SortCommand{},
}

func verbose(set *flag.FlagSet) *bool {
	var v bool
	set.BoolVar(&v, "v", false, "verbose output")
	return &v
}

func applyVerbose(v *bool) {
	if *v {
		log.SetLevel(log.DebugLevel)
	}
}

func openBook(file string) (*engine.Book, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return engine.Load(r)
}

func saveBook(book *engine.Book, file, out string) error {
	if out == "" {
		out = file
	}
	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()
	return book.Save(w)
}

func splitArea(str string) (string, string, error) {
	start, end, ok := strings.Cut(str, ":")
	if !ok {
		return "", "", fmt.Errorf("%s: expected <start:end> area", str)
	}
	return start, end, nil
}

type InfoCommand struct{}

func (c InfoCommand) Run(args []string) error {
	set := cli.NewFlagSet("info")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	for i, name := range book.ListSheets() {
		cols, lines, err := book.SheetExtent(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d %s: %d lines, %d columns\n", i, name, lines, cols)
	}
	return nil
}

type GetCommand struct{}

func (c GetCommand) Run(args []string) error {
	set := cli.NewFlagSet("get")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	val, err := book.GetCellValue(set.Arg(1), set.Arg(2))
	if err != nil {
		return err
	}
	contents, err := book.GetCellContents(set.Arg(1), set.Arg(2))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s (%s)\n", val, contents)
	return nil
}

type SetCommand struct {
	OutFile string
}

func (c SetCommand) Run(args []string) error {
	set := cli.NewFlagSet("set")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	if err := book.SetCellContents(set.Arg(1), set.Arg(2), set.Arg(3)); err != nil {
		return err
	}
	return saveBook(book, set.Arg(0), c.OutFile)
}

type SheetCommand struct {
	OutFile string
}

func (c SheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("sheet")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		book = engine.New()
	}
	_, name, err := book.NewSheet(set.Arg(1))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, name)
	return saveBook(book, set.Arg(0), c.OutFile)
}

type RemoveCommand struct {
	OutFile string
}

func (c RemoveCommand) Run(args []string) error {
	set := cli.NewFlagSet("remove")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	if err := book.DelSheet(set.Arg(1)); err != nil {
		return err
	}
	return saveBook(book, set.Arg(0), c.OutFile)
}

type RenameCommand struct {
	OutFile string
}

func (c RenameCommand) Run(args []string) error {
	set := cli.NewFlagSet("rename")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	if err := book.RenameSheet(set.Arg(1), set.Arg(2)); err != nil {
		return err
	}
	return saveBook(book, set.Arg(0), c.OutFile)
}

type TransferCommand struct {
	Move    bool
	OutFile string
	ToSheet string
}

func (c TransferCommand) Run(args []string) error {
	name := "copy"
	if c.Move {
		name = "move"
	}
	set := cli.NewFlagSet(name)
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	set.StringVar(&c.ToSheet, "t", "", "target sheet")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	start, end, err := splitArea(set.Arg(2))
	if err != nil {
		return err
	}
	if c.Move {
		err = book.MoveCells(set.Arg(1), start, end, set.Arg(3), c.ToSheet)
	} else {
		err = book.CopyCells(set.Arg(1), start, end, set.Arg(3), c.ToSheet)
	}
	if err != nil {
		return err
	}
	return saveBook(book, set.Arg(0), c.OutFile)
}

type SortCommand struct {
	OutFile string
}

func (c SortCommand) Run(args []string) error {
	set := cli.NewFlagSet("sort")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	v := verbose(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	applyVerbose(v)
	book, err := openBook(set.Arg(0))
	if err != nil {
		return err
	}
	start, end, err := splitArea(set.Arg(2))
	if err != nil {
		return err
	}
	var keys []int
	for _, part := range strings.Split(set.Arg(3), ",") {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("%s: invalid sort column", part)
		}
		keys = append(keys, k)
	}
	if err := book.SortRegion(set.Arg(1), start, end, keys); err != nil {
		return err
	}
	return saveBook(book, set.Arg(0), c.OutFile)
}
