package pixdex

import "context"

// CatalogStats reports the catalog snapshot currently serving searches.
func (c *Client) CatalogStats(ctx context.Context) (CatalogStats, error) {
	req, err := c.newRequest(ctx, "GET", "/api/v1/catalog/stats", nil)
	if err != nil {
		return CatalogStats{}, err
	}

	var stats CatalogStats
	if err := c.do(req, &stats); err != nil {
		return CatalogStats{}, err
	}
	return stats, nil
}

// Rebuild triggers an asynchronous catalog rebuild and returns the accepted
// job. Fails with ErrRebuildInProgress when one is already running.
func (c *Client) Rebuild(ctx context.Context) (RebuildJob, error) {
	req, err := c.newRequest(ctx, "POST", "/api/v1/admin/rebuild", nil)
	if err != nil {
		return RebuildJob{}, err
	}

	var job RebuildJob
	if err := c.do(req, &job); err != nil {
		return RebuildJob{}, err
	}
	return job, nil
}
