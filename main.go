//go:build !(js && wasm)

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/voxelsplace/pixpack/utils"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pixpack <command> [flags] [args]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  encode -p DIR -i IMG... [-o OUTDIR]        (archive DIR and hide it across the images)")
	fmt.Fprintln(w, "  decode -i IMG... -o FILE [--extract DIR]  (recover the hidden archive, optionally unpack it)")
	fmt.Fprintln(w, "  dry -p DIR -i IMG...                      (report whether DIR fits, write nothing)")
	fmt.Fprintln(w, "  inspect IMG...                            (print the frame header of each image)")
	fmt.Fprintln(w, "  gencarriers <width> <height> <amount> <output_dir>   (generate random-noise carrier images)")
	fmt.Fprintln(w, "Common flags: --config FILE --log-level LEVEL --workers N --format png|bmp|tiff")
	fmt.Fprintln(w, "              --archive zip|tar|tar.zst|tar.lz4 --duplicates reject|ignore-identical")
}

// usageError marks a bad invocation; run exits 2 for it.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// commonFlags are accepted by every command and override the config file
// only when given explicitly.
type commonFlags struct {
	config     string
	logLevel   string
	workers    int
	format     string
	archive    string
	duplicates string
}

func (c *commonFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "TOML config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.IntVar(&c.workers, "workers", 0, "parallel embed/extract workers (0 = GOMAXPROCS)")
	fs.StringVar(&c.format, "format", "", "output image format (png, bmp, tiff)")
	fs.StringVar(&c.archive, "archive", "", "archive format (zip, tar, tar.zst, tar.lz4)")
	fs.StringVar(&c.duplicates, "duplicates", "", "duplicate chunk policy (reject, ignore-identical)")
}

func (c *commonFlags) load(fs *pflag.FlagSet) (utils.Config, error) {
	cfg, err := utils.LoadConfig(c.config)
	if err != nil {
		return cfg, err
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if fs.Changed("workers") {
		cfg.Workers = c.workers
	}
	if fs.Changed("format") {
		cfg.ImageFormat = c.format
	}
	if fs.Changed("archive") {
		cfg.Archive = c.archive
	}
	if fs.Changed("duplicates") {
		cfg.Duplicates = c.duplicates
	}
	if err := cfg.Validate(); err != nil {
		return cfg, usagef("%v", err)
	}
	return cfg, nil
}

// prepareImages merges -i values with positional arguments, sorts them and
// checks that each one exists.
func prepareImages(flagged, positional []string) ([]string, error) {
	images := append(append([]string{}, flagged...), positional...)
	if len(images) == 0 {
		return nil, usagef("no images given")
	}
	sort.Strings(images)
	if err := utils.CheckImages(images); err != nil {
		return nil, usagef("%v", err)
	}
	return images, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	cmd, rest := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		usage(stdout)
		return 0
	}

	var common commonFlags
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	common.addFlags(fs)

	var err error
	switch cmd {
	case "encode":
		err = runEncode(fs, &common, rest, stdout, stderr)
	case "decode":
		err = runDecode(fs, &common, rest, stdout, stderr)
	case "dry":
		err = runDry(fs, &common, rest, stdout)
	case "inspect":
		err = runInspect(fs, &common, rest, stdout)
	case "gencarriers":
		err = runGenCarriers(fs, &common, rest, stdout)
	default:
		err = usagef("unknown command %q", cmd)
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		usage(stderr)
		return 2
	}
	return 1
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	return nil
}

func runEncode(fs *pflag.FlagSet, common *commonFlags, args []string, stdout, stderr io.Writer) error {
	dir := fs.StringP("path", "p", "", "directory to embed")
	images := fs.StringArrayP("images", "i", nil, "carrier images")
	outDir := fs.StringP("output", "o", "", "output folder for stego images")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *dir == "" {
		return usagef("encode needs -p DIR")
	}
	if fi, err := os.Stat(*dir); err != nil || !fi.IsDir() {
		return usagef("not a directory: %s", *dir)
	}
	paths, err := prepareImages(*images, fs.Args())
	if err != nil {
		return err
	}
	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	if fs.Changed("output") {
		cfg.OutputDir = *outDir
	}
	log, err := cfg.Logger(stderr)
	if err != nil {
		return err
	}
	written, err := utils.RunEncode(*dir, paths, cfg, log)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

func runDecode(fs *pflag.FlagSet, common *commonFlags, args []string, stdout, stderr io.Writer) error {
	images := fs.StringArrayP("images", "i", nil, "stego images")
	output := fs.StringP("output", "o", "", "file to write the recovered archive to")
	extract := fs.String("extract", "", "also unpack the recovered archive into this directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *output == "" {
		return usagef("decode needs -o FILE")
	}
	paths, err := prepareImages(*images, fs.Args())
	if err != nil {
		return err
	}
	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	log, err := cfg.Logger(stderr)
	if err != nil {
		return err
	}
	blob, err := utils.RunDecode(paths, *output, *extract, cfg, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "recovered %d bytes into %s\n", len(blob), *output)
	return nil
}

func runDry(fs *pflag.FlagSet, common *commonFlags, args []string, stdout io.Writer) error {
	dir := fs.StringP("path", "p", "", "directory to embed")
	images := fs.StringArrayP("images", "i", nil, "carrier images")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *dir == "" {
		return usagef("dry needs -p DIR")
	}
	paths, err := prepareImages(*images, fs.Args())
	if err != nil {
		return err
	}
	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	_, err = utils.RunDryRun(*dir, paths, cfg, stdout)
	return err
}

func runInspect(fs *pflag.FlagSet, common *commonFlags, args []string, stdout io.Writer) error {
	images := fs.StringArrayP("images", "i", nil, "images to inspect")
	if err := parse(fs, args); err != nil {
		return err
	}
	paths, err := prepareImages(*images, fs.Args())
	if err != nil {
		return err
	}
	if _, err := common.load(fs); err != nil {
		return err
	}
	return utils.RunInspect(paths, stdout)
}

func runGenCarriers(fs *pflag.FlagSet, common *commonFlags, args []string, stdout io.Writer) error {
	seed := fs.Int64("seed", 0, "random seed (0 = from clock)")
	if err := parse(fs, args); err != nil {
		return err
	}
	pos := fs.Args()
	if len(pos) != 4 {
		return usagef("gencarriers needs <width> <height> <amount> <output_dir>")
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(pos[i])
		if err != nil {
			return usagef("bad number %q", pos[i])
		}
		nums[i] = n
	}
	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	f, err := cfg.Format()
	if err != nil {
		return err
	}
	written, err := utils.RunGenerateCarriers(nums[0], nums[1], nums[2], pos[3], f, *seed)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(stdout, p)
	}
	return nil
}
