package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
)

// CLI 面向终端的迁移操作，输出当前 schema 版本
type CLI struct {
	migrator Migrator
	output   io.Writer
}

// Commands lists the actions accepted by Run
var Commands = []string{"up", "down", "down-all", "steps", "goto", "force", "version", "status", "info"}

// NewCLI 创建 CLI，默认输出到 stdout
func NewCLI(migrator Migrator) *CLI {
	return &CLI{migrator: migrator, output: os.Stdout}
}

// SetOutput 设置输出
func (c *CLI) SetOutput(w io.Writer) {
	c.output = w
}

// Run dispatches a migrate sub-action by name. steps, goto and force take one
// integer argument.
func (c *CLI) Run(ctx context.Context, action string, args []string) error {
	switch action {
	case "up":
		return c.RunUp(ctx)
	case "down":
		return c.RunDown(ctx)
	case "down-all":
		return c.RunDownAll(ctx)
	case "version":
		return c.RunVersion(ctx)
	case "status":
		return c.RunStatus(ctx)
	case "info":
		return c.RunInfo(ctx)
	case "steps", "goto", "force":
	default:
		return fmt.Errorf("unknown migrate action %q (want one of %v)", action, Commands)
	}

	if len(args) != 1 {
		return fmt.Errorf("%s requires exactly one numeric argument", action)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", action, args[0])
	}
	switch action {
	case "steps":
		return c.RunSteps(ctx, n)
	case "goto":
		if n < 0 {
			return fmt.Errorf("goto: version must not be negative")
		}
		return c.RunGoto(ctx, uint(n))
	default:
		return c.RunForce(ctx, n)
	}
}

// change 打印动作说明，执行后报告新版本
func (c *CLI) change(ctx context.Context, banner, failure string, fn func(context.Context) error) error {
	fmt.Fprintln(c.output, banner)
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}
	v, dirty, err := c.migrator.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "Document schema at version %d%s\n", v, dirtySuffix(dirty))
	return nil
}

func dirtySuffix(dirty bool) string {
	if dirty {
		return " (dirty)"
	}
	return ""
}

// RunUp 应用全部待执行迁移
func (c *CLI) RunUp(ctx context.Context) error {
	return c.change(ctx, "Applying curated document schema migrations...", "migration failed", c.migrator.Up)
}

// RunDown 回退最近一次迁移
func (c *CLI) RunDown(ctx context.Context) error {
	return c.change(ctx, "Rolling back last migration...", "rollback failed", c.migrator.Down)
}

// RunDownAll 回退全部迁移（会删除文档与触发短语表）
func (c *CLI) RunDownAll(ctx context.Context) error {
	return c.change(ctx, "Rolling back all migrations...", "rollback failed", c.migrator.DownAll)
}

// RunSteps 前进或回退 n 步
func (c *CLI) RunSteps(ctx context.Context, n int) error {
	if n == 0 {
		return fmt.Errorf("steps must not be zero")
	}
	banner := fmt.Sprintf("Applying %d migration(s)...", n)
	if n < 0 {
		banner = fmt.Sprintf("Rolling back %d migration(s)...", -n)
	}
	return c.change(ctx, banner, "migration steps failed", func(ctx context.Context) error {
		return c.migrator.Steps(ctx, n)
	})
}

// RunGoto 迁移到指定版本
func (c *CLI) RunGoto(ctx context.Context, version uint) error {
	return c.change(ctx, fmt.Sprintf("Migrating to version %d...", version), "migration failed", func(ctx context.Context) error {
		return c.migrator.Goto(ctx, version)
	})
}

// RunForce 强制设置版本号
func (c *CLI) RunForce(ctx context.Context, version int) error {
	return c.change(ctx, fmt.Sprintf("Forcing version to %d...", version), "force failed", func(ctx context.Context) error {
		return c.migrator.Force(ctx, version)
	})
}

// RunVersion 打印当前版本
func (c *CLI) RunVersion(ctx context.Context) error {
	v, dirty, err := c.migrator.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	if v == 0 {
		fmt.Fprintln(c.output, "No migrations applied yet.")
		return nil
	}
	fmt.Fprintf(c.output, "Current version: %d%s\n", v, dirtySuffix(dirty))
	return nil
}

// RunStatus 以表格列出每个迁移的状态
func (c *CLI) RunStatus(ctx context.Context) error {
	statuses, err := c.migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if len(statuses) == 0 {
		fmt.Fprintln(c.output, "No migrations found.")
		return nil
	}

	applied := 0
	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS")
	for _, s := range statuses {
		state := "pending"
		switch {
		case s.Dirty:
			state = "dirty"
		case s.Applied:
			state = "applied"
		}
		if s.Applied {
			applied++
		}
		fmt.Fprintf(w, "%06d\t%s\t%s\n", s.Version, s.Name, state)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.output, "\nTotal: %d, Applied: %d, Pending: %d\n", len(statuses), applied, len(statuses)-applied)
	return nil
}

// RunInfo 打印 schema 概况
func (c *CLI) RunInfo(ctx context.Context) error {
	info, err := c.migrator.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get info: %w", err)
	}
	fmt.Fprintln(c.output, "Curated document schema:")
	w := tabwriter.NewWriter(c.output, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "  Current Version:\t%d\n", info.CurrentVersion)
	fmt.Fprintf(w, "  Dirty:\t%v\n", info.Dirty)
	fmt.Fprintf(w, "  Total Migrations:\t%d\n", info.TotalMigrations)
	fmt.Fprintf(w, "  Applied Migrations:\t%d\n", info.AppliedMigrations)
	fmt.Fprintf(w, "  Pending Migrations:\t%d\n", info.PendingMigrations)
	return w.Flush()
}
