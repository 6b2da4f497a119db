package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gioui.org/app"
	contextfree "github.com/colinw7/contextfree"
	"github.com/colinw7/contextfree/backend/raster"
	"github.com/colinw7/contextfree/backend/svg"
	"github.com/colinw7/contextfree/lexer"
	"github.com/colinw7/contextfree/utils"
	"golang.org/x/term"
)

// minCanvasDim is the smallest width or height the rasterizer and
// preview window are allowed to operate on.
const minCanvasDim = 1

const HelpBanner = `
┌─┐┌─┐┌┬┐┌─┐
│  ├┤  │││ ┬
└─┘└   ┴└─┘

Context-free design grammar renderer.
    Version: %s

`

// Version indicates the current build version.
var Version string

var (
	width     = flag.Int("width", 800, "Image width")
	widthS    = flag.Int("w", 800, "Image width (shorthand)")
	height    = flag.Int("height", 600, "Image height")
	heightS   = flag.Int("h", 600, "Image height (shorthand)")
	sizeMul   = flag.Float64("size", 1, "Overall scale multiplier")
	sizeMulS  = flag.Float64("s", 1, "Overall scale multiplier (shorthand)")
	maxShapes = flag.Int("max_shapes", 500000, "Maximum number of shapes to render")
	maxShapesS = flag.Int("m", 500000, "Maximum number of shapes (shorthand)")
	minSize   = flag.Float64("min_size", 0.3, "Minimum relative shape size before a branch is culled")
	minSizeS  = flag.Float64("x", 0.3, "Minimum relative shape size (shorthand)")
	border    = flag.Float64("border", 0, "Border margin as a fraction of canvas size")
	borderS   = flag.Float64("b", 0, "Border margin (shorthand)")
	antialias = flag.Bool("antialias", true, "Antialias the rendered output")
	noAA      = flag.Bool("noantialias", false, "Disable antialiasing")
	seed      = flag.Int64("seed", 0, "PRNG seed (0 seeds from the wall clock)")
	out       = flag.String("out", "out.png", "Destination file (.png or .svg)")
	preview   = flag.Bool("preview", false, "Show a live GUI preview window while expanding")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		fmt.Fprintln(os.Stderr, "Usage: cfdg [flags] grammar.cfdg")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide a grammar source file!", utils.ErrorMessage))
	}

	if *preview {
		go run(args[0])
		app.Main()
	} else {
		run(args[0])
	}
}

func run(path string) {
	defaultMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ CFDG", utils.StatusMessage),
		utils.DecorateText("⇢ expanding grammar (be patient, it may take a while)...", utils.DefaultMessage),
	)
	spinner := utils.NewSpinner(defaultMsg, time.Millisecond*80, !*preview && term.IsTerminal(int(os.Stdout.Fd())))
	spinner.Start()

	now := time.Now()
	prog, err := loadProgram(path)
	if err != nil {
		spinner.StopMsg = failureMsg(err)
		spinner.Stop()
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	w := utils.Max(resolveFlag(*width, *widthS, 800), minCanvasDim)
	h := utils.Max(resolveFlag(*height, *heightS, 600), minCanvasDim)
	eng := contextfree.NewEngine(prog, *seed)
	eng.MaxShapes = resolveFlag(*maxShapes, *maxShapesS, 500000)
	eng.MinSize = resolveFloatFlag(*minSize, *minSizeS, 0.3)
	eng.PixelSize = 1 / resolveFloatFlag(*sizeMul, *sizeMulS, 1)

	aa := *antialias && !*noAA

	var (
		canvas  = raster.New(w, h)
		win     *contextfree.PreviewWindow
		preBack *contextfree.PreviewBackend
	)
	canvas.AntiAlias = aa
	tick := func(generation, shapeCount int) error { return nil }
	if *preview {
		preBack = contextfree.NewPreviewBackend(canvas, func() image.Image { return canvas.Snapshot() }, 25)
		win = contextfree.NewPreviewWindow(w, h, preBack.Frames)
		tick = func(generation, shapeCount int) error {
			_ = canvas.FillBackground(prog.Background)
			_ = contextfree.Render(context.Background(), prog, eng.Shapes, eng.Paths, canvas)
			return preBack.Tick(generation, shapeCount)
		}
		go func() {
			if err := win.Run(); err != nil {
				fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
			}
		}()
	}

	if err := eng.Expand(context.Background(), tick); err != nil {
		spinner.StopMsg = failureMsg(err)
		spinner.Stop()
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}
	for _, e := range eng.Errors {
		fmt.Fprintln(os.Stderr, utils.DecorateText(e.Error(), utils.ErrorMessage))
	}

	if err := renderTo(prog, eng, w, h, aa, *out); err != nil {
		spinner.StopMsg = failureMsg(err)
		spinner.Stop()
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}
	if preBack != nil {
		preBack.Close()
	}

	spinner.StopMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ CFDG", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the drawing has been rendered successfully ✔", utils.SuccessMessage),
	)
	spinner.Stop()
	fmt.Fprintf(os.Stderr, "\n%d shapes, %d paths in %s\n",
		len(eng.Shapes), len(eng.Paths), utils.FormatTime(time.Since(now)))
}

func failureMsg(err error) string {
	return fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ CFDG", utils.StatusMessage),
		utils.DecorateText("expanding grammar failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)
}

func resolveFlag(primary, shorthand, def int) int {
	if primary != def {
		return primary
	}
	return shorthand
}

func resolveFloatFlag(primary, shorthand, def float64) float64 {
	if primary != def {
		return primary
	}
	return shorthand
}

// loadProgram parses path and every include it transitively reaches,
// downloading http(s) includes through utils.DownloadSource.
func loadProgram(path string) (*contextfree.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open grammar source: %w", err)
	}
	defer f.Close()

	p := contextfree.NewParser(lexer.New(path, f))
	p.Include = resolveInclude
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if len(p.Errors) > 0 {
		var sb strings.Builder
		for _, e := range p.Errors {
			sb.WriteString(e.Error())
			sb.WriteByte('\n')
		}
		return nil, fmt.Errorf("grammar has parse errors:\n%s", sb.String())
	}
	contextfree.RegisterBuiltins(prog)
	return prog, nil
}

func resolveInclude(name string) (f io.Reader, srcName string, err error) {
	if utils.IsValidUrl(name) {
		tmp, derr := utils.DownloadSource(name)
		if derr != nil {
			return nil, "", derr
		}
		return tmp, name, nil
	}
	file, oerr := os.Open(name)
	if oerr != nil {
		return nil, "", oerr
	}
	return file, name, nil
}

func renderTo(prog *contextfree.Program, eng *contextfree.Engine, w, h int, antialias bool, dest string) error {
	switch {
	case strings.HasSuffix(dest, ".svg"):
		doc := svg.New(w, h)
		if err := contextfree.Render(context.Background(), prog, eng.Shapes, eng.Paths, doc); err != nil {
			return err
		}
		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = doc.WriteTo(out)
		return err
	default:
		canvas := raster.New(w, h)
		canvas.AntiAlias = antialias
		if err := contextfree.Render(context.Background(), prog, eng.Shapes, eng.Paths, canvas); err != nil {
			return err
		}
		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()
		return canvas.EncodePNG(out)
	}
}
