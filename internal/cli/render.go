package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"printshop/internal/codec"
	"printshop/internal/config"
	"printshop/internal/fit"
	"printshop/internal/pdfpage"
	"printshop/internal/products"
	"printshop/internal/units"
)

// renderOpts holds the flags for the render command. Zero values mean the
// product's default.
type renderOpts struct {
	output  string
	dpi     int
	policy  string
	part    string
	offset  int
	border  bool
	frame   string
	caption string
	layout  string
	formats []string
	title   string
	footer  string
	rotate  int
}

// rendered is a product result ready to be written.
type rendered struct {
	images []*image.NRGBA
	page   *pdfpage.PageSize
	pdf    []byte
}

var productNames = []string{"portrait", "idsheet", "polaroid", "multiformat", "a4", "centered", "triptych"}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <product> <photo>...",
		Short: "Render a product from photo files",
		Long: "Render one of the products (" + strings.Join(productNames, ", ") + ") without the web server.\n" +
			"The output format follows the --output extension. Several images are written as name_1.ext, name_2.ext, ...",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: productNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), a, args[0], args[1:], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "out.jpg", "output file (.jpg, .png or .pdf)")
	f.IntVar(&opts.dpi, "dpi", 0, "print resolution (defaults to config)")
	f.StringVar(&opts.policy, "policy", "", "fit policy: cover, contain or smart")
	f.StringVar(&opts.part, "part", "", "portrait: window, print, preview or both; multiformat: sheets or prints")
	f.IntVar(&opts.offset, "offset", 0, "portrait: vertical window offset in pixels")
	f.BoolVar(&opts.border, "border", false, "idsheet: white border around each photo")
	f.StringVar(&opts.frame, "frame", "medium", "polaroid: frame preset")
	f.StringVar(&opts.caption, "caption", "", "polaroid or centered caption")
	f.StringVar(&opts.layout, "layout", "a4-10x15", "a4: layout preset")
	f.StringSliceVar(&opts.formats, "formats", nil, "multiformat: format presets (default all)")
	f.StringVar(&opts.title, "title", "", "triptych title")
	f.StringVar(&opts.footer, "footer", "", "triptych footer")
	f.IntVar(&opts.rotate, "rotate", 0, "idsheet or polaroid: rotation in degrees")
	return cmd
}

func runRender(ctx context.Context, a *app, product string, paths []string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if opts.dpi == 0 {
		opts.dpi = a.cfg.DPI
	}
	if opts.dpi < config.MinDPI || opts.dpi > config.MaxDPI {
		return fmt.Errorf("%w: dpi %d outside [%d, %d]", products.ErrInvalidOption, opts.dpi, config.MinDPI, config.MaxDPI)
	}
	format, err := codec.FormatFromName(opts.output)
	if err != nil {
		return err
	}

	photos := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodeFile(p, a.cfg.MaxPixels())
		if err != nil {
			return err
		}
		photos = append(photos, img)
	}

	out, err := renderProduct(ctx, a, product, photos, opts)
	if err != nil {
		return err
	}
	files, err := writeRendered(out, opts.output, format, a.cfg.Quality, opts.dpi)
	if err != nil {
		return err
	}
	prog.done("rendered", "product", product, "files", files, "dpi", opts.dpi)
	return nil
}

func decodeFile(path string, maxPixels int) (image.Image, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a user-supplied input file
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := codec.DecodeLimit(f, maxPixels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func (o renderOpts) fitPolicy(def fit.Policy) (fit.Policy, error) {
	if o.policy == "" {
		return def, nil
	}
	return fit.ParsePolicy(o.policy)
}

func renderProduct(ctx context.Context, a *app, product string, photos []image.Image, opts renderOpts) (rendered, error) {
	cfg := a.cfg
	def := fit.Cover
	if product == "multiformat" {
		def = fit.Contain
	}
	policy, err := opts.fitPolicy(def)
	if err != nil {
		return rendered{}, err
	}
	one := func(img *image.NRGBA, err error) (rendered, error) {
		if err != nil {
			return rendered{}, err
		}
		return rendered{images: []*image.NRGBA{img}}, nil
	}

	switch product {
	case "portrait":
		arc, err := cfg.ArcHeight(opts.dpi)
		if err != nil {
			return rendered{}, err
		}
		res, err := products.PortraitFrame(photos[0], products.PortraitOptions{
			DPI:        opts.dpi,
			Policy:     policy,
			Offset:     opts.offset,
			ArcHeight:  arc,
			Mask:       cfg.MaskOptions(),
			Background: cfg.BackgroundColor(),
		})
		if err != nil {
			return rendered{}, err
		}
		switch opts.part {
		case "", "window":
			return one(res.Window, nil)
		case "print":
			return one(res.Print, nil)
		case "preview":
			return one(res.Preview, nil)
		case "both":
			return rendered{images: []*image.NRGBA{res.Print, res.Window}}, nil
		}
		return rendered{}, fmt.Errorf("%w: unknown part %q", products.ErrInvalidOption, opts.part)

	case "idsheet":
		return one(products.IDSheet(photos[0], products.IDSheetOptions{
			DPI:    opts.dpi,
			Policy: policy,
			Border: opts.border,
			Rotate: opts.rotate,
		}))

	case "polaroid":
		frame, ok := a.presets.Frame(opts.frame)
		if !ok {
			return rendered{}, fmt.Errorf("%w: unknown frame %q", products.ErrInvalidOption, opts.frame)
		}
		return one(products.Polaroid(photos[0], products.PolaroidOptions{
			Size:    units.PixelSize{W: frame.Width, H: frame.Height},
			Caption: opts.caption,
			Rotate:  opts.rotate,
		}))

	case "multiformat":
		formats := a.presets.Formats
		if len(opts.formats) > 0 {
			formats = nil
			for _, name := range opts.formats {
				ft, ok := a.presets.Format(name)
				if !ok {
					return rendered{}, fmt.Errorf("%w: unknown format %q", products.ErrInvalidOption, name)
				}
				formats = append(formats, ft)
			}
		}
		res, err := products.MultiFormat(ctx, photos[0], formats, products.MultiFormatOptions{
			DPI:        opts.dpi,
			Policy:     &policy,
			Background: cfg.BackgroundColor(),
		})
		if err != nil {
			return rendered{}, err
		}
		if opts.part == "prints" {
			var out rendered
			for _, p := range res.Prints {
				out.images = append(out.images, p.Image)
			}
			return out, nil
		}
		page := pdfpage.Photo
		return rendered{images: res.Sheets, page: &page}, nil

	case "a4":
		layout, ok := a.presets.Layout(opts.layout)
		if !ok {
			return rendered{}, fmt.Errorf("%w: unknown layout %q", products.ErrInvalidOption, opts.layout)
		}
		page, err := layout.PageSize()
		if err != nil {
			return rendered{}, err
		}
		pages, err := products.LayoutPages(ctx, photos, layout, products.LayoutOptions{
			DPI:        opts.dpi,
			Policy:     policy,
			Background: cfg.BackgroundColor(),
		})
		if err != nil {
			return rendered{}, err
		}
		return rendered{images: pages, page: &page}, nil

	case "centered":
		var buf bytes.Buffer
		err := products.CenteredPDF(&buf, photos[0], products.CenteredOptions{
			DPI:     opts.dpi,
			Quality: cfg.Quality,
			Policy:  policy,
			Caption: opts.caption,
		})
		if err != nil {
			return rendered{}, err
		}
		return rendered{pdf: buf.Bytes()}, nil

	case "triptych":
		t := products.DefaultTriptychOptions()
		t.DPI = opts.dpi
		t.Title = opts.title
		t.Footer = opts.footer
		return one(products.Triptych(photos[:min(3, len(photos))], t))
	}
	return rendered{}, fmt.Errorf("%w: unknown product %q", products.ErrInvalidOption, product)
}

// writeRendered writes out to path and returns the files it created.
func writeRendered(out rendered, path string, format codec.Format, quality, dpi int) ([]string, error) {
	var buf bytes.Buffer
	switch {
	case out.pdf != nil:
		if format != codec.PDF {
			return nil, fmt.Errorf("%w: this product is only available as PDF", products.ErrInvalidOption)
		}
		buf.Write(out.pdf)
	case format == codec.PDF && out.page != nil:
		if err := products.SheetsPDF(&buf, out.images, *out.page, quality); err != nil {
			return nil, err
		}
	case format == codec.PDF:
		imgs := make([]image.Image, len(out.images))
		for i, img := range out.images {
			imgs[i] = img
		}
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := products.ImagesToPDF(&buf, imgs, dpi, quality, title); err != nil {
			return nil, err
		}
	case len(out.images) == 1:
		if err := codec.Encode(&buf, out.images[0], codec.Options{Format: format, Quality: quality, DPI: dpi}); err != nil {
			return nil, err
		}
	default:
		return writeNumbered(out.images, path, format, quality, dpi)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // output files are meant to be shared
		return nil, err
	}
	return []string{path}, nil
}

func writeNumbered(images []*image.NRGBA, path string, format codec.Format, quality, dpi int) ([]string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	files := make([]string, 0, len(images))
	for i, img := range images {
		b, err := codec.EncodeBytes(img, codec.Options{Format: format, Quality: quality, DPI: dpi})
		if err != nil {
			return files, err
		}
		name := fmt.Sprintf("%s_%d%s", base, i+1, ext)
		if err := os.WriteFile(name, b, 0o644); err != nil { //nolint:gosec // output files are meant to be shared
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}
