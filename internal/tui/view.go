package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

func render(d *Display, width int) string {
	var b strings.Builder

	header := fmt.Sprintf("gh-pr-watch │ %d repos │ %d PRs", len(d.order), d.prCount())
	if d.unseen > 0 {
		header += fmt.Sprintf(" │ %d unseen", d.unseen)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Watched repositories"))
	b.WriteString("\n")
	b.WriteString(renderRepos(d, width))

	b.WriteString(sectionStyle.Render("Recent activity"))
	b.WriteString("\n")
	b.WriteString(renderFeed(d.feed))

	b.WriteString(footerStyle.Render("q:quit  r:refresh  c:mark seen"))

	return b.String()
}

func renderRepos(d *Display, width int) string {
	if len(d.order) == 0 {
		return emptyStyle.Render("  (no repos configured)") + "\n"
	}

	var b strings.Builder
	for i, name := range d.order {
		r := d.repos[name]
		isLast := i == len(d.order)-1
		prefix := "├─"
		if isLast {
			prefix = "└─"
		}

		line := fmt.Sprintf("%s %s [%d PRs]", prefix, name, len(r.prs))
		b.WriteString(repoStyle.Render(line))
		if r.degraded {
			b.WriteString(degradedStyle.Render(fmt.Sprintf("  ⚠ source unavailable (%s)", r.degradedKind)))
		}
		b.WriteString("\n")

		childPrefix := "│  "
		if isLast {
			childPrefix = "   "
		}

		prs := r.sortedPRs()
		if len(prs) == 0 {
			note := "  (no open PRs)"
			if !r.polled {
				note = "  (waiting for first poll)"
			}
			b.WriteString(emptyStyle.Render(childPrefix + note))
			b.WriteString("\n")
			continue
		}

		for j, pr := range prs {
			prPrefix := "├─"
			if j == len(prs)-1 {
				prPrefix = "└─"
			}

			title := pr.Title
			maxTitle := 60
			if width > 0 && width-30 < maxTitle {
				maxTitle = width - 30
			}
			if maxTitle < 20 {
				maxTitle = 20
			}
			if runewidth.StringWidth(title) > maxTitle {
				title = runewidth.Truncate(title, maxTitle-3, "...")
			}

			mark := d.attention[prKey(name, pr.Number)]
			line := fmt.Sprintf("%s%s %s %s #%-4d %s (@%s)",
				childPrefix, prPrefix, statusIcon(pr), activityMarker(pr, mark),
				pr.Number, title, pr.Author)
			b.WriteString(prStyle.Render(line))
			if tag := reasonTag(pr); tag != "" {
				b.WriteString(" ")
				b.WriteString(reasonStyle.Render(tag))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderFeed(feed []feedEntry) string {
	if len(feed) == 0 {
		return emptyStyle.Render("  (nothing yet)") + "\n"
	}

	var b strings.Builder
	for _, entry := range feed {
		b.WriteString("  ")
		b.WriteString(feedTimeStyle.Render(entry.at.Format("15:04:05")))
		b.WriteString(" ")
		line := entry.subject
		if entry.detail != "" {
			line += ": " + entry.detail
		}
		b.WriteString(feedStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
