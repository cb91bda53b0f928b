package geo

// ClusterPoint is one input point for clustering, carrying the locality
// uuid so single-point markers stay clickable.
type ClusterPoint struct {
	UUID  string
	Point Point
}

// Cluster is a group of map points merged for display at a given zoom
// level. Count==1 clusters render as plain markers at Point; larger
// clusters render as cluster markers at the member centroid.
type Cluster struct {
	Point   Point    `json:"geom"`
	Count   int      `json:"count"`
	UUID    string   `json:"uuid,omitempty"`
	Members []string `json:"members,omitempty"`

	// Running projected centroid, used only while building.
	px    PixelPoint
	sumPx PixelPoint
}

// ClusterPoints reduces a point set to zoom-appropriate clusters. Each
// point joins the first existing cluster whose projected icon bounding box
// (iconWidth x iconHeight centered on the cluster's running centroid)
// covers it; otherwise it founds a new cluster. The result is a pure
// function of the input sequence, so callers must supply a stable order.
func ClusterPoints(points []ClusterPoint, zoom, iconWidth, iconHeight int) []Cluster {
	clusters := make([]*Cluster, 0)

	halfW := float64(iconWidth) / 2
	halfH := float64(iconHeight) / 2

	for _, p := range points {
		px := Project(p.Point, zoom)

		var home *Cluster

		for _, c := range clusters {
			if px.X >= c.px.X-halfW && px.X <= c.px.X+halfW &&
				px.Y >= c.px.Y-halfH && px.Y <= c.px.Y+halfH {
				home = c

				break
			}
		}

		if home == nil {
			clusters = append(clusters, &Cluster{
				Point:   p.Point,
				Count:   1,
				UUID:    p.UUID,
				Members: []string{p.UUID},
				px:      px,
				sumPx:   px,
			})

			continue
		}

		home.Count++
		home.Members = append(home.Members, p.UUID)
		home.UUID = ""

		// Keep the centroid of member geographic coordinates and recenter
		// the pixel box on the projected running mean.
		n := float64(home.Count)
		home.Point.Lon += (p.Point.Lon - home.Point.Lon) / n
		home.Point.Lat += (p.Point.Lat - home.Point.Lat) / n
		home.sumPx.X += px.X
		home.sumPx.Y += px.Y
		home.px = PixelPoint{X: home.sumPx.X / n, Y: home.sumPx.Y / n}
	}

	out := make([]Cluster, len(clusters))
	for i, c := range clusters {
		out[i] = *c
	}

	return out
}
