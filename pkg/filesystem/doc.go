// Package filesystem provides named storage disks backed by a local
// directory or an S3 compatible bucket.
//
// Disks are declared in the "filesystems" config section and resolved
// lazily by a Manager, which also forwards calls to the default disk:
//
//	files := filesystem.NewManager(filesystem.Config{
//		Default: "local",
//		Disks: map[string]filesystem.DiskConfig{
//			"local": {Driver: "local", Root: "storage/app"},
//			"s3":    {Driver: "s3", S3Config: filesystem.S3Config{Bucket: "media", Key: key, Secret: secret}},
//		},
//	})
//
//	err := files.Put(ctx, "reports/march.csv", r)
//	media, _ := files.Disk("s3")
//	url, err := media.URL(ctx, "avatars/1.png")
//
// PutFile stores a multipart upload under a random name after checking it
// against FileRule values such as MaxSize and ImageOnly. Failures are
// returned as *validation.Error so they render as a 422 response.
package filesystem
