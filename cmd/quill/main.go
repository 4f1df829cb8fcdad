// quill is a command-line front end for the composer: post text or a
// whole thread with automatic facets, inspect what the scanner finds,
// and stash/restore local drafts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	"github.com/bluesky-social/quill/bskyclient"
	"github.com/bluesky-social/quill/compose"
	"github.com/bluesky-social/quill/lang"
	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/richtext"
	"github.com/bluesky-social/quill/store"
)

func main() {
	app := cli.App{
		Name:    "quill",
		Usage:   "compose and publish posts from the terminal",
		Version: versioninfo.Short(),
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "pds-host",
			Usage:   "method, hostname, and port of PDS instance",
			Value:   "https://bsky.social",
			EnvVars: []string{"QUILL_PDS_HOST", "ATP_PDS_HOST"},
		},
		&cli.StringFlag{
			Name:    "handle",
			Usage:   "account handle or DID to post as",
			EnvVars: []string{"QUILL_HANDLE", "ATP_AUTH_HANDLE"},
		},
		&cli.StringFlag{
			Name:    "app-password",
			Usage:   "app password for the account",
			EnvVars: []string{"QUILL_APP_PASSWORD", "ATP_AUTH_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "warn",
			EnvVars: []string{"QUILL_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "drafts-db",
			Usage:   "path to the drafts SQLite database",
			EnvVars: []string{"QUILL_DRAFTS_DB"},
		},
	}
	app.Before = func(cctx *cli.Context) error {
		return setupSlog(cctx.String("log-level"))
	}
	app.Commands = []*cli.Command{
		postCmd,
		facetsCmd,
		detectLangCmd,
		cardCmd,
		draftCmd,
	}
	app.RunAndExitOnError()
}

func setupSlog(levelStr string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return fmt.Errorf("unknown log level %q: %w", levelStr, err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func getClient(cctx *cli.Context) (*bskyclient.Client, error) {
	handle := cctx.String("handle")
	password := cctx.String("app-password")
	if handle == "" || password == "" {
		return nil, fmt.Errorf("no credentials: set --handle and --app-password (or QUILL_HANDLE / QUILL_APP_PASSWORD)")
	}
	return bskyclient.Login(cctx.Context, cctx.String("pds-host"), handle, password)
}

func draftsDBPath(cctx *cli.Context) (string, error) {
	if p := cctx.String("drafts-db"); p != "" {
		return p, nil
	}
	return xdg.DataFile(filepath.Join("quill", "drafts.db"))
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var postCmd = &cli.Command{
	Name:      "post",
	Usage:     "publish a post (or thread: separate entries with a lone '+' argument)",
	ArgsUsage: "<text> [+ <text> ...]",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "lang",
			Usage: "post language (BCP-47), repeatable; auto-detected when omitted",
		},
		&cli.StringSliceFlag{
			Name:  "image",
			Usage: "image file to attach to the first entry, repeatable (max 4)",
		},
		&cli.StringSliceFlag{
			Name:  "alt",
			Usage: "alt text for the corresponding --image, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "tag",
			Usage: "outline hashtag (no '#'), repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "label",
			Usage: "self label (e.g. 'porn', 'nudity', 'graphic-media'), repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "gate",
			Usage: "reply gate rule: 'mention', 'following', or 'list:<at-uri>'; repeatable, 'nobody' for none",
		},
		&cli.StringFlag{
			Name:  "reply-to",
			Usage: "strong ref of the post to reply to, as '<at-uri>#<cid>'",
		},
		&cli.StringFlag{
			Name:  "reply-root",
			Usage: "strong ref of the thread root, as '<at-uri>#<cid>' (defaults to --reply-to)",
		},
		&cli.StringFlag{
			Name:  "quote",
			Usage: "strong ref of a post to quote, as '<at-uri>#<cid>'",
		},
	},
	Action: func(cctx *cli.Context) error {
		texts := splitEntries(cctx.Args().Slice())
		if len(texts) == 0 {
			return fmt.Errorf("nothing to post")
		}

		client, err := getClient(cctx)
		if err != nil {
			return err
		}
		sess := compose.NewSession(client, client, client, client)

		if err := applySelections(cctx, sess); err != nil {
			return err
		}

		for i, text := range texts {
			if i > 0 {
				sess.AddEntry(cctx.Context)
			}
			sess.SetText(cctx.Context, text)
			if langs := cctx.StringSlice("lang"); len(langs) > 0 {
				sess.SetLanguages(langs)
			} else if detected := sess.SuggestedLanguage(); detected != "" {
				sess.SetLanguages([]string{detected})
			}
		}
		sess.SwitchTo(cctx.Context, 0)

		for i, path := range cctx.StringSlice("image") {
			m, err := loadMedia(path)
			if err != nil {
				return err
			}
			if alts := cctx.StringSlice("alt"); i < len(alts) {
				m.SetAlt(alts[i])
			}
			if err := sess.AddImage(m); err != nil {
				return err
			}
		}
		sess.SetOutlineTags(cctx.StringSlice("tag"))

		sess.WaitForCards()

		refs, err := submit(cctx.Context, sess)
		if err != nil {
			return err
		}
		return printJSON(refs)
	},
}

// splitEntries turns ["one", "two", "+", "three"] into ["one two", "three"].
func splitEntries(args []string) []string {
	var out []string
	var cur []string
	flush := func() {
		if joined := strings.TrimSpace(strings.Join(cur, " ")); joined != "" {
			out = append(out, joined)
		}
		cur = nil
	}
	for _, a := range args {
		if a == "+" {
			flush()
			continue
		}
		cur = append(cur, a)
	}
	flush()
	return out
}

func applySelections(cctx *cli.Context, sess *compose.Session) error {
	sess.SetLabels(cctx.StringSlice("label"))

	if q := cctx.String("quote"); q != "" {
		ref, err := parseStrongRef(q)
		if err != nil {
			return err
		}
		sess.SetQuote(ref)
	}
	if r := cctx.String("reply-to"); r != "" {
		parent, err := parseStrongRef(r)
		if err != nil {
			return err
		}
		root := parent
		if rr := cctx.String("reply-root"); rr != "" {
			if root, err = parseStrongRef(rr); err != nil {
				return err
			}
		}
		sess.SetReplyTo(root, parent)
	}

	if rules := cctx.StringSlice("gate"); len(rules) > 0 {
		allow, err := parseGateRules(rules)
		if err != nil {
			return err
		}
		sess.SetThreadgate(allow)
	}
	return nil
}

func parseStrongRef(s string) (*models.StrongRef, error) {
	uri, cid, ok := strings.Cut(s, "#")
	if !ok || uri == "" || cid == "" {
		return nil, fmt.Errorf("bad strong ref %q: want '<at-uri>#<cid>'", s)
	}
	return &models.StrongRef{Uri: uri, Cid: cid}, nil
}

func parseGateRules(rules []string) ([]*models.FeedThreadgate_Allow_Elem, error) {
	var allow []*models.FeedThreadgate_Allow_Elem
	for _, r := range rules {
		switch {
		case r == "nobody":
			return nil, nil
		case r == "mention":
			allow = append(allow, &models.FeedThreadgate_Allow_Elem{
				FeedThreadgate_MentionRule: &models.FeedThreadgate_MentionRule{},
			})
		case r == "following":
			allow = append(allow, &models.FeedThreadgate_Allow_Elem{
				FeedThreadgate_FollowingRule: &models.FeedThreadgate_FollowingRule{},
			})
		case strings.HasPrefix(r, "list:"):
			allow = append(allow, &models.FeedThreadgate_Allow_Elem{
				FeedThreadgate_ListRule: &models.FeedThreadgate_ListRule{List: strings.TrimPrefix(r, "list:")},
			})
		default:
			return nil, fmt.Errorf("unknown gate rule %q", r)
		}
	}
	return allow, nil
}

func loadMedia(path string) (*compose.MediaItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading media %s: %w", path, err)
	}
	m := compose.NewLoadedMediaItem(data, mimeFromPath(path), nil)
	m.Path = path
	return m, nil
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	default:
		return "image/jpeg"
	}
}

func submit(ctx context.Context, sess *compose.Session) ([]*models.StrongRef, error) {
	if sess.IsThread() {
		return sess.SubmitThread(ctx)
	}
	ref, err := sess.SubmitPost(ctx)
	if err != nil {
		return nil, err
	}
	return []*models.StrongRef{ref}, nil
}

var facetsCmd = &cli.Command{
	Name:      "facets",
	Usage:     "print the facets detected in the given text as JSON",
	ArgsUsage: "<text>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "resolve",
			Usage: "resolve @mentions against the PDS directory (requires credentials)",
		},
	},
	Action: func(cctx *cli.Context) error {
		text := strings.Join(cctx.Args().Slice(), " ")

		resolved := map[string]*models.ProfileSummary{}
		if cctx.Bool("resolve") {
			client, err := getClient(cctx)
			if err != nil {
				return err
			}
			for _, span := range richtext.ScanMentions(text) {
				actors, err := client.SearchActorsTypeahead(cctx.Context, span.Text, 1)
				if err != nil {
					return err
				}
				if len(actors) > 0 && strings.EqualFold(actors[0].Handle, span.Text) {
					resolved[span.Text] = actors[0]
				}
			}
		}

		return printJSON(richtext.BuildFacets(text, resolved))
	},
}

var detectLangCmd = &cli.Command{
	Name:      "detect-lang",
	Usage:     "guess the language of the given text",
	ArgsUsage: "<text>",
	Action: func(cctx *cli.Context) error {
		detected := lang.Detect(strings.Join(cctx.Args().Slice(), " "))
		if detected == "" {
			return fmt.Errorf("no letters to go on")
		}
		fmt.Println(detected)
		return nil
	},
}

var cardCmd = &cli.Command{
	Name:      "card",
	Usage:     "fetch the link card for a URL",
	ArgsUsage: "<url>",
	Action: func(cctx *cli.Context) error {
		url := cctx.Args().First()
		if url == "" {
			return fmt.Errorf("no URL given")
		}
		client := bskyclient.NewClient(nil)
		card, err := client.FetchCard(cctx.Context, url)
		if err != nil {
			return err
		}
		return printJSON(struct {
			URI         string `json:"uri"`
			Title       string `json:"title"`
			Description string `json:"description"`
			ImageBytes  int    `json:"imageBytes"`
			ImageMime   string `json:"imageMime,omitempty"`
		}{card.URI, card.Title, card.Description, len(card.Image), card.ImageMime})
	},
}

var draftCmd = &cli.Command{
	Name:  "draft",
	Usage: "manage the local draft",
	Subcommands: []*cli.Command{
		{
			Name:      "save",
			Usage:     "save text as the current draft (thread entries separated by '+')",
			ArgsUsage: "<text> [+ <text> ...]",
			Action: func(cctx *cli.Context) error {
				texts := splitEntries(cctx.Args().Slice())
				if len(texts) == 0 {
					return fmt.Errorf("nothing to save")
				}
				ds, err := openDrafts(cctx)
				if err != nil {
					return err
				}
				sess := compose.NewSession(nil, nil, nil, nil)
				for i, text := range texts {
					if i > 0 {
						sess.AddEntry(cctx.Context)
					}
					sess.SetText(cctx.Context, text)
				}
				return ds.SaveDraft(cctx.Context, sess.Snapshot())
			},
		},
		{
			Name:  "show",
			Usage: "print the current draft as JSON",
			Action: func(cctx *cli.Context) error {
				ds, err := openDrafts(cctx)
				if err != nil {
					return err
				}
				snap, err := ds.LoadDraft(cctx.Context)
				if err != nil {
					return err
				}
				if snap == nil {
					return fmt.Errorf("no draft saved")
				}
				return printJSON(snap)
			},
		},
		{
			Name:  "post",
			Usage: "publish the current draft and clear it",
			Action: func(cctx *cli.Context) error {
				ds, err := openDrafts(cctx)
				if err != nil {
					return err
				}
				snap, err := ds.LoadDraft(cctx.Context)
				if err != nil {
					return err
				}
				if snap == nil {
					return fmt.Errorf("no draft saved")
				}

				client, err := getClient(cctx)
				if err != nil {
					return err
				}
				sess := compose.NewSession(client, client, client, client)
				sess.Restore(cctx.Context, snap)
				if err := reloadMedia(sess, cctx); err != nil {
					return err
				}
				sess.WaitForCards()

				refs, err := submit(cctx.Context, sess)
				if err != nil {
					return err
				}
				if err := ds.ClearDraft(cctx.Context); err != nil {
					slog.Warn("posted but failed to clear draft", "err", err)
				}
				return printJSON(refs)
			},
		},
		{
			Name:  "rm",
			Usage: "discard the current draft",
			Action: func(cctx *cli.Context) error {
				ds, err := openDrafts(cctx)
				if err != nil {
					return err
				}
				return ds.ClearDraft(cctx.Context)
			},
		},
	},
}

func openDrafts(cctx *cli.Context) (*store.DraftStore, error) {
	path, err := draftsDBPath(cctx)
	if err != nil {
		return nil, fmt.Errorf("resolving drafts DB path: %w", err)
	}
	return store.NewDraftStore(path, slog.Default())
}

// reloadMedia re-reads restored media items from their file paths; drafts
// only carry the references.
func reloadMedia(sess *compose.Session, cctx *cli.Context) error {
	for i := 0; i < sess.EntryCount(); i++ {
		sess.SwitchTo(cctx.Context, i)
		e := sess.Buffer()
		for _, m := range append(append([]*compose.MediaItem{}, e.Images...), e.Video) {
			if m == nil || !m.Loading() {
				continue
			}
			snap := m.Snapshot()
			data, err := os.ReadFile(snap.Path)
			if err != nil {
				return fmt.Errorf("reloading media %s: %w", snap.Path, err)
			}
			m.SetLoaded(data, mimeFromPath(snap.Path), nil)
		}
	}
	sess.SwitchTo(cctx.Context, 0)
	return nil
}
