// Package main provides the newsdesk command-line tool.
// Usage: newsdesk [-config file] [-output text|json] <command> [args]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/usecase/news"
)

const usage = `Usage: newsdesk [-config file] [-output text|json] <command> [args]

Commands:
  seed                              load the CSV data directory into the repository
  stats                             print article, tag and comment counts
  article <id>                      show one article with its tags and comments
  first | last                      show the earliest or latest article
  date <YYYY-MM-DD>                 list a day's articles with neighboring dates
  tag <name>                        list the articles carrying a tag
  tags                              list tag names
  random <n>                        show up to n random articles
  comment <id> <username> <text>    add a comment to an article
  register <username> <password>    register a user
  login <username> <password>       check a user's credentials
  reset                             drop and recreate the relational schema

Seed data is read from DATA_PATH (default ./data), which must hold
news_articles.csv, users.csv and comments.csv. Set LOG_FORMAT=text for
human-readable logs on stderr.
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
// Logs go to stderr so that stdout carries only command output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("newsdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	var (
		configPath   string
		outputFormat string
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || (outputFormat != "text" && outputFormat != "json") {
		fs.Usage()
		return 2
	}

	logger := logging.New(stderr)
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}
	logger = logging.WithFields(logger, map[string]interface{}{
		"command": fs.Arg(0),
		"backend": cfg.Repository,
	})
	ctx = logging.WithLogger(ctx, logger)

	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize repository", slog.Any("error", err))
		return 1
	}
	defer a.close(ctx)

	out := newPrinter(stdout, outputFormat == "json")
	if err := a.dispatch(ctx, out, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
			return 2
		}
		logger.Error("command failed", slog.Any("error", err))
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) dispatch(ctx context.Context, out *printer, cmd string, args []string) error {
	if cmd == "reset" {
		if err := a.reset(ctx); err != nil {
			return err
		}
		c, err := a.counts(ctx)
		if err != nil {
			return err
		}
		return out.counts(c)
	}

	// The memory backend starts empty on every run.
	if a.ephemeral || cmd == "seed" {
		stats, err := a.populate.Populate(ctx)
		if err != nil {
			return fmt.Errorf("seed repository: %w", err)
		}
		if cmd == "seed" {
			return out.stats(stats)
		}
	}

	switch cmd {
	case "seed":
		return nil
	case "stats":
		c, err := a.counts(ctx)
		if err != nil {
			return err
		}
		return out.counts(c)
	case "article":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		article, err := a.news.GetArticle(ctx, id)
		if err != nil {
			return err
		}
		return out.article(article)
	case "first", "last":
		get := a.news.GetFirstArticle
		if cmd == "last" {
			get = a.news.GetLastArticle
		}
		article, err := get(ctx)
		if err != nil {
			return err
		}
		return out.article(article)
	case "date":
		if len(args) != 1 {
			return fmt.Errorf("%w: date needs YYYY-MM-DD", errUsage)
		}
		date, err := time.Parse(entity.DateLayout, args[0])
		if err != nil {
			return fmt.Errorf("%w: bad date %q", errUsage, args[0])
		}
		result, err := a.news.GetArticlesByDate(ctx, date)
		if err != nil {
			return err
		}
		return out.dateResult(date, result)
	case "tag":
		if len(args) == 0 {
			return fmt.Errorf("%w: tag needs a name", errUsage)
		}
		ids, err := a.news.GetArticleIDsForTag(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		articles, err := a.news.GetArticlesByID(ctx, ids)
		if err != nil {
			return err
		}
		return out.articles(articles)
	case "tags":
		names, err := a.news.GetTagNames(ctx)
		if err != nil {
			return err
		}
		return out.lines(names)
	case "random":
		n, err := parseCount(args)
		if err != nil {
			return err
		}
		articles, err := a.news.GetRandomArticles(ctx, n)
		if err != nil {
			return err
		}
		return out.articles(articles)
	case "comment":
		if len(args) < 3 {
			return fmt.Errorf("%w: comment needs an article id, a username and text", errUsage)
		}
		id, err := parseID(args[:1])
		if err != nil {
			return err
		}
		comment, err := a.news.AddComment(ctx, id, strings.Join(args[2:], " "), args[1])
		if err != nil {
			return err
		}
		return out.comment(comment)
	case "register", "login":
		if len(args) != 2 {
			return fmt.Errorf("%w: %s needs a username and a password", errUsage, cmd)
		}
		op := a.auth.Register
		if cmd == "login" {
			op = a.auth.Authenticate
		}
		user, err := op(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return out.user(user)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// counts summarizes the stored data. The repository has no user listing, so
// users are not counted here.
type counts struct {
	Articles int `json:"articles"`
	Tags     int `json:"tags"`
	Comments int `json:"comments"`
}

func (a *app) counts(ctx context.Context) (counts, error) {
	articles, err := a.repo.GetNumberOfArticles(ctx)
	if err != nil {
		return counts{}, fmt.Errorf("count articles: %w", err)
	}
	tags, err := a.repo.GetTags(ctx)
	if err != nil {
		return counts{}, fmt.Errorf("get tags: %w", err)
	}
	comments, err := a.repo.GetComments(ctx)
	if err != nil {
		return counts{}, fmt.Errorf("get comments: %w", err)
	}
	return counts{Articles: articles, Tags: len(tags), Comments: len(comments)}, nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one article id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad article id %q", errUsage, args[0])
	}
	if id <= 0 {
		return 0, news.ErrInvalidArticleID
	}
	return id, nil
}

func parseCount(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected a count", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad count %q", errUsage, args[0])
	}
	return n, nil
}
