package media

import (
	"fmt"
	"strings"
)

// OverlaySpec describes the title/artist/language badge burned into a clip.
type OverlaySpec struct {
	Title    string
	Artist   string
	Language string
	Enabled  bool
	Width    int
	Height   int
}

// EscapeText escapes special characters for the ffmpeg drawtext filter.
func EscapeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `'`, `'\''`)
	text = strings.ReplaceAll(text, `:`, `\:`)
	text = strings.ReplaceAll(text, `[`, `\[`)
	text = strings.ReplaceAll(text, `]`, `\]`)
	return text
}

// overlayAlpha fades text in over the first second, holds, then fades out
// ending at showDur.
func overlayAlpha(showDur float64) string {
	return fmt.Sprintf("if(lt(t,1),t,if(lt(t,%g),1,1-(t-%g)))", showDur-1, showDur-1)
}

// segmentVideoFilter builds the scale/pad chain plus the optional text
// overlay for an extracted segment of the given duration.
func segmentVideoFilter(o OverlaySpec, duration float64) string {
	filters := []string{fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		o.Width, o.Height, o.Width, o.Height)}

	if o.Enabled {
		titleSize := max(28, o.Height/20)
		artistSize := max(20, o.Height/28)
		badgeSize := max(16, o.Height/36)
		padding := o.Height / 20

		showDur := duration - 1
		if showDur > 6.0 {
			showDur = 6.0
		}
		alpha := overlayAlpha(showDur)

		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=2:bordercolor=black@0.7:x=%d:y=h-%d:alpha='%s'",
			EscapeText(o.Title), titleSize, padding, padding+artistSize+titleSize+10, alpha))

		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=white@0.85:borderw=1:bordercolor=black@0.6:x=%d:y=h-%d:alpha='%s'",
			EscapeText(o.Artist), artistSize, padding, padding+artistSize, alpha))

		if o.Language != "" {
			filters = append(filters, fmt.Sprintf(
				"drawtext=text='  %s  ':fontsize=%d:fontcolor=white:box=1:boxcolor=blue@0.7:boxborderw=4:x=w-%d-text_w:y=%d:alpha='%s'",
				EscapeText(strings.ToUpper(o.Language)), badgeSize, padding, padding, alpha))
		}
	}

	return strings.Join(filters, ",")
}
