package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/interact"
	"github.com/vanderheijden86/tempmap/pkg/version"
)

// pageData feeds pageTmpl.
type pageData struct {
	Title          string
	Description    string
	HeatMap        template.HTML
	Legend         template.HTML
	TooltipOffsetY int
	OutlineStroke  string
	Cells          int
	Version        string
}

var pageFuncs = template.FuncMap{
	"plural": func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(pageFuncs).Parse(tmplPage))

// WriteHTML writes a self-contained page with the heat map, the legend and a
// hover tooltip. The script implements the same enter/leave rules as
// interact.Handler.
func WriteHTML(w io.Writer, c *chart.Chart, opts Options) error {
	opts = opts.withDefaults(c)

	var heat, legend bytes.Buffer
	if err := writeHeatmapSVG(&heat, c, opts.Margin); err != nil {
		return fmt.Errorf("render heat map: %w", err)
	}
	if err := writeLegendSVG(&legend, c, opts.Margin); err != nil {
		return fmt.Errorf("render legend: %w", err)
	}

	data := pageData{
		Title:          opts.Title,
		Description:    opts.Description,
		HeatMap:        template.HTML(inlineSVG(heat.String())),
		Legend:         template.HTML(inlineSVG(legend.String())),
		TooltipOffsetY: interact.TooltipOffsetY,
		OutlineStroke:  interact.OutlineStroke,
		Cells:          len(c.Cells),
		Version:        version.Version,
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// inlineSVG drops the XML prolog svgo writes; it is not valid inside HTML.
func inlineSVG(doc string) string {
	if i := strings.Index(doc, "<svg"); i > 0 {
		return doc[i:]
	}
	return doc
}

const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<meta name="generator" content="tempmap {{.Version}}">
<title>{{.Title}}</title>
<style>
*{box-sizing:border-box}
body{font-family:Helvetica,Arial,sans-serif;background:#fff;color:#111;margin:24px}
h1{font-size:22px;margin:0 0 4px}
#description{color:#555;margin:0 0 16px;font-size:14px}
#heat-map rect.cell{shape-rendering:crispEdges}
#legend{margin-top:8px}
#tooltip{position:absolute;pointer-events:none;background:rgba(20,20,20,.85);color:#fff;padding:6px 8px;border-radius:4px;font-size:12px;line-height:1.4;white-space:pre;text-align:center;opacity:0}
footer{color:#888;font-size:11px;margin-top:12px}
</style>
</head>
<body>
<h1 id="title">{{.Title}}</h1>
<p id="description">{{.Description}}</p>
<div id="heat-map">{{.HeatMap}}</div>
<div id="legend">{{.Legend}}</div>
<div id="tooltip"></div>
<footer>{{plural .Cells "cell"}}</footer>
<script>
(function(){
  var tip = document.getElementById("tooltip");
  var offsetY = {{.TooltipOffsetY}};
  var stroke = {{.OutlineStroke}};
  var hovered = null;

  function clear(cell){
    cell.removeAttribute("stroke");
    cell.removeAttribute("stroke-opacity");
  }

  function enter(cell, ev){
    if (hovered && hovered !== cell) clear(hovered);
    hovered = cell;
    tip.textContent = cell.getAttribute("data-tooltip");
    tip.setAttribute("data-year", cell.getAttribute("data-year"));
    var box = cell.getBoundingClientRect();
    tip.style.left = (ev.pageX - tip.offsetWidth / 2) + "px";
    tip.style.top = (box.top + window.scrollY + offsetY) + "px";
    tip.style.opacity = 1;
    cell.setAttribute("stroke", stroke);
    cell.setAttribute("stroke-opacity", 1);
  }

  function leave(cell){
    if (hovered !== cell) return;
    clear(cell);
    tip.style.opacity = 0;
    hovered = null;
  }

  document.querySelectorAll("#heat-map rect.cell").forEach(function(cell){
    cell.addEventListener("mouseover", function(ev){ enter(cell, ev); });
    cell.addEventListener("mouseout", function(){ leave(cell); });
  });
})();
</script>
</body>
</html>
`
