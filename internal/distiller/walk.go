package distiller

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/hollowoak/distill/internal/decision"
	"github.com/hollowoak/distill/internal/pathmatch"
)

// collect walks the source tree and decides every regular file, accumulating
// scan/skip statistics as it goes. It returns the copy/sample jobs in
// traversal order; destinations are resolved but nothing is written yet.
func (d *Distiller) collect(ctx context.Context, absSource, absDest string) ([]job, error) {
	var (
		jobs   []job
		ignore *ignoreMatcher
	)
	if d.rules.RespectGitignore {
		ignore = newIgnoreMatcher(absSource)
	}

	err := filepath.WalkDir(absSource, func(p string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			d.log.Errorf("Error accessing %s: %v", p, err)
			d.stats.addError()
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := pathmatch.RelPosix(p, absSource)

		if entry.IsDir() {
			if p == absSource {
				return nil
			}
			if relErr == nil && ignore != nil && ignore.Ignored(rel, true) {
				d.log.Debugf("Skipping gitignored directory: %s", rel)
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			d.log.Debugf("Skipping non-regular file: %s", p)
			return nil
		}

		d.stats.addScanned()
		if relErr != nil {
			d.log.Errorf("Error processing file %s: %v", p, relErr)
			d.stats.addError()
			return nil
		}

		if ignore != nil && ignore.Ignored(rel, false) {
			d.stats.addSkip("gitignored")
			d.log.Debugf("SKIP    %s (gitignored)", rel)
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			d.log.Errorf("Error processing file %s: %v", p, infoErr)
			d.stats.addError()
			return nil
		}

		dec := d.engine.Decide(decision.Entry{RelPath: rel, Size: info.Size()})
		if dec.Action() == decision.ActionSkip {
			d.stats.addSkip(dec.SkipReason())
			d.log.Debugf("SKIP    %s (%s)", rel, dec.SkipReason())
			return nil
		}

		if d.hook != nil {
			keep, hookErr := d.hook.Keep(rel, path.Base(rel), actionWord(dec.Action()))
			if hookErr != nil {
				d.log.Errorf("Error processing file %s: %v", rel, hookErr)
				d.stats.addError()
				return nil
			}
			if !keep {
				d.stats.addSkip("lua_filter")
				d.log.Debugf("SKIP    %s (lua_filter)", rel)
				return nil
			}
		}

		jobs = append(jobs, job{
			srcPath:  p,
			destPath: filepath.Join(absDest, filepath.FromSlash(rel)),
			relPath:  rel,
			action:   dec.Action(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// actionWord is the lowercase action name exposed to the Lua hook.
func actionWord(a decision.Action) string {
	if a == decision.ActionSample {
		return "sample"
	}
	return "copy"
}
