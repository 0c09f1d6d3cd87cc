package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blogctl/internal/blog"
)

// runList drives one page of a list controller: initial load with an optional
// sort override, optional jump to a later page, rows, and a pagination footer.
func runList[T any](ctx context.Context, ctrl *blog.ListController[T], page int, sortBy, sortOrder string, printRow func(T)) error {
	var err error
	if sortBy != "" || sortOrder != "" {
		err = ctrl.SetSort(ctx, sortBy, sortOrder)
	} else {
		err = ctrl.Reload(ctx)
	}
	if err != nil {
		if errors.Is(err, blog.ErrNotAuthorized) {
			return fmt.Errorf("you are not authorized to view this list; run `blogctl login`")
		}
		return err
	}
	if page > 1 {
		if err := ctrl.SetPage(ctx, page); err != nil {
			return err
		}
	}

	items := ctrl.Items()
	if len(items) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, item := range items {
		printRow(item)
	}

	fmt.Println(pageFooter(ctrl.PageNum(), ctrl.TotalPages(), ctrl.PageLinks()))
	return nil
}

// pageFooter renders "Page 2/7  pages: 1 2 3 7" with the windowed page links.
func pageFooter(page, total int, links []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d/%d", page, total)
	if total > 1 {
		b.WriteString("  pages:")
		prev := 0
		for _, n := range links {
			if prev != 0 && n > prev+1 {
				b.WriteString(" ..")
			}
			b.WriteString(" ")
			if n == page {
				b.WriteString("[" + strconv.Itoa(n) + "]")
			} else {
				b.WriteString(strconv.Itoa(n))
			}
			prev = n
		}
	}
	return b.String()
}
