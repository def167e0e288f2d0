// Command imageio converts images between PNG and JPEG XL and reports
// image information.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/oy3o/imageio"
	"github.com/oy3o/imageio/internal/config"
)

const usage = `usage:
  imageio convert [-from FORMAT] [-to FORMAT] IN OUT
  imageio info IN
`

var errUsage = errors.New("invalid usage")

func main() {
	log := logrus.New()
	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.WithError(err).Error("imageio failed")
		os.Exit(1)
	}
}

// run executes one subcommand. It never exits the process.
func run(args []string, stdout io.Writer, log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return runWith(cfg, args, stdout, log)
}

func runWith(cfg *config.Config, args []string, stdout io.Writer, log *logrus.Logger) error {
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	imageio.SetLogger(log)

	if len(args) == 0 {
		return errUsage
	}
	codec := imageio.NewCodec(cfg.Options())
	switch args[0] {
	case "convert":
		return convert(codec, cfg, args[1:], log)
	case "info":
		return info(codec, args[1:], stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func convert(codec *imageio.Codec, cfg *config.Config, args []string, log *logrus.Logger) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	from := fs.String("from", "auto", "input format")
	to := fs.String("to", "", "output format (default: from OUT's extension)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: convert needs IN and OUT", errUsage)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	src, err := imageio.ParseFormat(*from)
	if err != nil {
		return err
	}
	dst, err := outputFormat(*to, out, cfg)
	if err != nil {
		return err
	}

	img, size, err := decodeFile(codec, in, src)
	if err != nil {
		return err
	}
	data, err := codec.Encode(img, dst)
	if err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"in":     in,
		"out":    out,
		"format": dst.String(),
		"width":  img.Width,
		"height": img.Height,
	}).Infof("converted %s to %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(len(data))))
	return nil
}

// outputFormat picks -to, then OUT's extension, then the configured default.
func outputFormat(flagValue, out string, cfg *config.Config) (imageio.Format, error) {
	if flagValue != "" {
		f, err := imageio.ParseFormat(flagValue)
		if err != nil {
			return imageio.Auto, err
		}
		if f != imageio.Auto {
			return f, nil
		}
	}
	if f, err := imageio.ParseFormat(filepath.Ext(out)); err == nil && f != imageio.Auto {
		return f, nil
	}
	return cfg.Format(), nil
}

func decodeFile(codec *imageio.Codec, path string, format imageio.Format) (*imageio.Image, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	cr := &countingReader{r: f}
	img, err := codec.DecodeReader(cr, format)
	if err != nil {
		return nil, cr.n, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, cr.n, nil
}

func info(codec *imageio.Codec, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: info needs IN", errUsage)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	format, ok := imageio.DetectFormat(data)
	if !ok {
		return fmt.Errorf("%s: %w", args[0], imageio.ErrUnsupportedFormat)
	}
	img, err := codec.Decode(data, format)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	pixels := uint64(img.Width) * uint64(img.Height)
	fmt.Fprintf(stdout, "%s: %s %dx%d, %s pixels, %s\n",
		args[0], format, img.Width, img.Height,
		humanize.Comma(int64(pixels)), humanize.IBytes(uint64(len(data))))
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
