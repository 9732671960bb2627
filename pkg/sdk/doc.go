// Package pixdex provides a Go client for the pixdex visual similarity
// search service.
//
//	client, _ := pixdex.New("http://localhost:8080")
//
//	img, _ := os.Open("query.jpg")
//	defer img.Close()
//	results, _ := client.Search(ctx, img, pixdex.WithK(5))
//	for _, r := range results {
//	    fmt.Println(r.Product.Name, r.Similarity)
//	}
//
// Errors returned by the service map to exported sentinels:
//
//	if errors.Is(err, pixdex.ErrInvalidImage) { ... }
package pixdex
