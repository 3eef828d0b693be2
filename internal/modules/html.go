package modules

import (
	"strings"

	"golang.org/x/net/html"
)

// scriptRef is one <script> tag found in a page.
type scriptRef struct {
	Src    string
	Async  bool
	Defer  bool
	Inline bool
}

// formRef is one <form> with the inputs relevant to login detection.
type formRef struct {
	Action      string
	HasPassword bool
	HasText     bool
}

// pageInfo is the tokenizer's single pass over a document.
type pageInfo struct {
	Title       string
	MetaDesc    string
	Scripts     []scriptRef
	Forms       []formRef
	FaviconHref string
}

// parsePage tokenizes an HTML document and collects the tags the
// modules care about. The tokenizer never fails on malformed markup; it
// stops at the first error token, which includes normal EOF.
func parsePage(doc string) pageInfo {
	var info pageInfo

	z := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	var curForm *formRef

	for {
		switch z.Next() {
		case html.ErrorToken:
			if curForm != nil {
				info.Forms = append(info.Forms, *curForm)
			}
			return info

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = true
			case "meta":
				name := strings.ToLower(attr(tok, "name"))
				prop := strings.ToLower(attr(tok, "property"))
				if info.MetaDesc == "" && (name == "description" || prop == "og:description") {
					info.MetaDesc = cleanText(attr(tok, "content"))
				}
				if info.Title == "" && (prop == "og:title" || name == "twitter:title") {
					info.Title = cleanText(attr(tok, "content"))
				}
			case "link":
				rel := strings.ToLower(attr(tok, "rel"))
				if strings.Contains(rel, "icon") && info.FaviconHref == "" {
					info.FaviconHref = attr(tok, "href")
				}
			case "script":
				src := attr(tok, "src")
				info.Scripts = append(info.Scripts, scriptRef{
					Src:    src,
					Async:  hasAttr(tok, "async"),
					Defer:  hasAttr(tok, "defer"),
					Inline: src == "",
				})
			case "form":
				if curForm != nil {
					info.Forms = append(info.Forms, *curForm)
				}
				curForm = &formRef{Action: attr(tok, "action")}
			case "input":
				if curForm != nil {
					switch strings.ToLower(attr(tok, "type")) {
					case "password":
						curForm.HasPassword = true
					case "text", "email", "":
						curForm.HasText = true
					}
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = false
			case "form":
				if curForm != nil {
					info.Forms = append(info.Forms, *curForm)
					curForm = nil
				}
			}

		case html.TextToken:
			if inTitle && info.Title == "" {
				if t := cleanText(string(z.Text())); t != "" {
					info.Title = t
				}
			}
		}
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(tok html.Token, name string) bool {
	for _, a := range tok.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace and truncates to a presentable length.
func cleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 200 {
		s = s[:197] + "..."
	}
	return s
}

// absoluteURL resolves ref against the page URL when it is relative.
func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		if strings.HasPrefix(base, "https://") {
			return "https:" + ref
		}
		return "http:" + ref
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}
