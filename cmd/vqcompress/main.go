// vqcompress compresses an image into a self-describing .vqc artifact.
//
// Usage:
//
//	vqcompress -model <model.yaml> [-o <output.vqc>] [-zstd] <image>
//
// The model config describes the quantizer: grid size and palette. The
// artifact carries the Huffman code table, the packed index bits, and the
// grid shape, so vqdecompress needs only the artifact and the model.
//
// Options:
//
//	-model  model config YAML (required)
//	-o      output path (default: input with .vqc extension)
//	-zstd   zstd-compress the packed payload inside the container
//	-q      suppress the compression report
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Parthkk90/vqvae/codec"
	"github.com/Parthkk90/vqvae/container"
	"github.com/Parthkk90/vqvae/internal/imageio"
	"github.com/Parthkk90/vqvae/model"
)

var (
	modelPath string
	outPath   string
	useZstd   bool
	quiet     bool
)

func init() {
	flag.StringVar(&modelPath, "model", "", "model config YAML (required)")
	flag.StringVar(&outPath, "o", "", "output path (default: input with .vqc extension)")
	flag.BoolVar(&useZstd, "zstd", false, "zstd-compress the packed payload")
	flag.BoolVar(&quiet, "q", false, "suppress the compression report")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -model <model.yaml> [-o <output.vqc>] [-zstd] <image>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if modelPath == "" || flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	if err := run(inPath); err != nil {
		fmt.Fprintf(os.Stderr, "vqcompress: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath string) error {
	cfg, err := model.LoadConfig(modelPath)
	if err != nil {
		return err
	}
	m, err := cfg.Model()
	if err != nil {
		return err
	}

	img, err := imageio.Load(inPath)
	if err != nil {
		return err
	}

	opts := &codec.Options{PayloadCodec: container.PayloadCodecNone}
	if useZstd {
		opts.PayloadCodec = container.PayloadCodecZstd
	}

	data, err := codec.Compress(img, m, opts)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".vqc"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	if !quiet {
		in, err := os.Stat(inPath)
		if err == nil && in.Size() > 0 {
			ratio := float64(len(data)) / float64(in.Size()) * 100
			fmt.Printf("%s: %d bytes -> %s: %d bytes (%.2f%%)\n",
				inPath, in.Size(), out, len(data), ratio)
		} else {
			fmt.Printf("%s -> %s: %d bytes\n", inPath, out, len(data))
		}
	}
	return nil
}
