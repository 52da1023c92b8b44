// Package synthesis writes one article per group of duplicate documents.
//
// Groups with a single member are turned into articles locally. Groups with
// several members are sent to an ai.Generator, which is asked to merge the
// sources into a single Markdown article. Generation runs on an ants worker
// pool, is retried with a fixed delay and never fails the batch: a group
// whose generation fails gets an article with core.StatusFailed.
//
// Basic usage:
//
//	orch, err := synthesis.New(provider.Generator(), synthesis.WithMaxConcurrent(10))
//	if err != nil {
//	    return err
//	}
//	defer orch.Release()
//	articles := orch.Synthesize(ctx, groups, docs, nil)
package synthesis
