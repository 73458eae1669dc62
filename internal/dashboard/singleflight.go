package dashboard

import "context"

// do collapses concurrent builds of the same key. A caller whose context ends
// stops waiting; the shared build continues for the others.
func (s *Service) do(ctx context.Context, key string, fn func(context.Context) (Table, error)) (Table, bool, error) {
	resultChan := s.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return Table{}, false, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Table{}, res.Shared, res.Err
		}
		return res.Val.(Table), res.Shared, nil
	}
}
