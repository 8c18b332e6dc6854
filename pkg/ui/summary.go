package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"iganalyzer/pkg/normalize"
	"iganalyzer/pkg/report"
	"iganalyzer/pkg/stats"
)

const barWidth = 24

// RenderSummary formats the headline numbers of a report as terminal panels
func RenderSummary(w io.Writer, r *report.Report) string {
	st := newStyles(lipgloss.NewRenderer(w))

	panels := []string{
		panel(st, "OVERVIEW", overview(st, r)),
		panel(st, "POSTING PATTERN", pattern(st, r.PostingPattern)),
		panel(st, "CONTENT", contentPanel(st, r)),
		panel(st, "TOP POSTS", topPosts(st, r)),
	}
	if r.Diagnostics.Rejected > 0 || len(r.Diagnostics.Warnings) > 0 {
		panels = append(panels, panel(st, "DIAGNOSTICS", diagnostics(st, r.Diagnostics)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

// PrintSummary writes the rendered summary to the terminal output
func PrintSummary(r *report.Report) {
	if quiet {
		return
	}
	fmt.Fprintln(out, RenderSummary(out, r))
}

func panel(st styles, title, body string) string {
	return st.panel.Render(st.title.Render(title) + "\n\n" + body)
}

func row(st styles, label, value string) string {
	return fmt.Sprintf("%s %s", st.label.Render(fmt.Sprintf("%-20s", label)), st.value.Render(value))
}

func overview(st styles, r *report.Report) string {
	s := r.Summary
	lines := []string{
		row(st, "Posts", fmt.Sprintf("%d", s.TotalPosts)),
		row(st, "Likes", countLine(s.Likes)),
		row(st, "Comments", countLine(s.Comments)),
		row(st, "Engagement / post", s.EngagementPerPost.String()),
		row(st, "Avg caption length", s.AvgCaptionLength.String()),
	}
	if s.DateRange != nil {
		lines = append(lines, row(st, "Date range", fmt.Sprintf("%s → %s",
			s.DateRange.First.Format("2006-01-02"), s.DateRange.Last.Format("2006-01-02"))))
	}
	if s.CreatorTier != nil {
		lines = append(lines, row(st, "Creator tier", *s.CreatorTier))
	}

	var media []string
	for _, mt := range []string{"image", "video", "carousel"} {
		media = append(media, fmt.Sprintf("%s %d", mt, s.MediaTypes[mt]))
	}
	lines = append(lines, row(st, "Media", strings.Join(media, " · ")))
	return strings.Join(lines, "\n")
}

func countLine(c stats.CountStats) string {
	return fmt.Sprintf("total %d · avg %s · median %s · max %s",
		c.Total, c.Average, c.Median, c.Max)
}

func pattern(st styles, p stats.PostingPattern) string {
	if p.MostActiveWeekday == nil {
		return st.dim.Render("no posts")
	}

	max := 0
	for _, b := range p.ByWeekday {
		if b.Posts > max {
			max = b.Posts
		}
	}

	lines := []string{row(st, "Timezone", p.Timezone)}
	for _, b := range p.ByWeekday {
		lines = append(lines, fmt.Sprintf("%s %s %d",
			st.label.Render(fmt.Sprintf("%-10s", b.Name)),
			st.bar.Render(Bar(b.Posts, max, barWidth)),
			b.Posts))
	}
	lines = append(lines,
		"",
		row(st, "Most active day", stats.WeekdayNames[*p.MostActiveWeekday]),
		row(st, "Most active hour", fmt.Sprintf("%02d:00", *p.MostActiveHour)),
	)
	if n := len(p.ByMonth); n > 0 {
		lines = append(lines, row(st, "Months covered", fmt.Sprintf("%d (%s → %s)", n, p.ByMonth[0].Period, p.ByMonth[n-1].Period)))
	}
	return strings.Join(lines, "\n")
}

func contentPanel(st styles, r *report.Report) string {
	p := r.ContentProfile
	lines := []string{
		row(st, "Theme", p.Theme),
		row(st, "Hashtags", fmt.Sprintf("%d total · %d unique · %s per post", p.TotalHashtags, p.UniqueHashtags, p.AvgHashtagsPerPost)),
	}

	var tags []string
	for _, c := range p.TopHashtags {
		tags = append(tags, fmt.Sprintf("#%s (%d)", c.Value, c.Count))
	}
	if len(tags) > 0 {
		lines = append(lines, row(st, "Top hashtags", strings.Join(tags, " ")))
	}

	var words []string
	for _, c := range p.TopTokens {
		words = append(words, fmt.Sprintf("%s (%d)", c.Value, c.Count))
	}
	if len(words) > 0 {
		lines = append(lines, row(st, "Top words", strings.Join(words, " ")))
	}
	return strings.Join(lines, "\n")
}

func topPosts(st styles, r *report.Report) string {
	if len(r.TopPostDetails) == 0 {
		return st.dim.Render("none")
	}

	lines := make([]string, 0, len(r.TopPostDetails))
	for _, e := range r.TopPostDetails {
		id := e.ID
		if e.Shortcode != "" {
			id = e.Shortcode
		}
		lines = append(lines, fmt.Sprintf("%s %-16s %s  %s likes · %s comments · %s",
			st.success.Render(fmt.Sprintf("#%-2d", e.Rank)),
			id,
			st.value.Render(fmt.Sprintf("%10.1f", e.Score)),
			e.Likes, e.Comments,
			st.dim.Render(e.TakenAt.Format("2006-01-02"))))
	}
	return strings.Join(lines, "\n")
}

func diagnostics(st styles, d report.Diagnostics) string {
	lines := []string{
		row(st, "Input records", fmt.Sprintf("%d", d.TotalInput)),
		row(st, "Accepted", fmt.Sprintf("%d", d.Accepted)),
	}
	for _, reason := range normalize.Reasons(d.RejectionsByReason) {
		lines = append(lines, st.warning.Render(fmt.Sprintf("rejected: %s × %d", reason, d.RejectionsByReason[reason])))
	}
	for _, reason := range normalize.Reasons(d.WarningsByReason) {
		lines = append(lines, st.dim.Render(fmt.Sprintf("warning: %s × %d", reason, d.WarningsByReason[reason])))
	}
	return strings.Join(lines, "\n")
}
