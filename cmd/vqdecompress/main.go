// vqdecompress reconstructs an image from a .vqc artifact.
//
// Usage:
//
//	vqdecompress -model <model.yaml> -o <output image> [-scale N] <artifact.vqc>
//
// The reconstruction comes back at index-grid resolution; -scale upscales
// it by an integer factor for display.
//
// Options:
//
//	-model  model config YAML (required)
//	-o      output image path (required; format by extension)
//	-scale  integer upscale factor for the reconstruction (default 1)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Parthkk90/vqvae/codec"
	"github.com/Parthkk90/vqvae/internal/imageio"
	"github.com/Parthkk90/vqvae/model"
)

var (
	modelPath string
	outPath   string
	scale     int
)

func init() {
	flag.StringVar(&modelPath, "model", "", "model config YAML (required)")
	flag.StringVar(&outPath, "o", "", "output image path (required)")
	flag.IntVar(&scale, "scale", 1, "integer upscale factor")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -model <model.yaml> -o <output image> [-scale N] <artifact.vqc>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if modelPath == "" || outPath == "" || flag.NArg() != 1 || scale < 1 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "vqdecompress: %v\n", err)
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

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	img, err := codec.Decompress(data, m)
	if err != nil {
		return err
	}

	if scale > 1 {
		b := img.Bounds()
		img = imageio.Scale(img, uint(b.Dx()*scale), uint(b.Dy()*scale))
	}

	if err := imageio.Save(img, outPath); err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", inPath, outPath)
	return nil
}
