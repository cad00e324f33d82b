package dumps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// 索引页中的版本目录链接，如 <a href="20240101/">
var versionHref = regexp.MustCompile(`^(\d+)/?$`)

// Source 数据版本查询与下载
type Source interface {
	FetchVersion(ctx context.Context, category string) (string, error)
	Download(ctx context.Context, category, version string) (storage.FileInfo, error)
}

// Config 下载客户端配置
type Config struct {
	IndexURL        string        // 索引页URL模板，{cate}为分类
	FileURL         string        // 文件URL模板，{cate}为分类，{date}为版本
	IndexTimeout    time.Duration // 索引页请求超时
	DownloadTimeout time.Duration // 下载超时，0为不限制
	UserAgent       string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		IndexURL:     "https://dumps.wikimedia.org/{cate}/",
		FileURL:      "https://dumps.wikimedia.org/{cate}/{date}/{cate}-{date}-all-titles-in-ns0.gz",
		IndexTimeout: 30 * time.Second,
		UserAgent:    "rime-zhwiki/1.0",
	}
}

// Client 维基数据转储客户端
type Client struct {
	config   Config
	index    *http.Client
	download *http.Client
	storage  *storage.LocalStorage
	log      *logrus.Logger
}

// NewClient 创建客户端，下载文件保存到store
func NewClient(config Config, store *storage.LocalStorage) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		config:   config,
		index:    &http.Client{Timeout: config.IndexTimeout, Transport: transport},
		download: &http.Client{Timeout: config.DownloadTimeout, Transport: transport},
		storage:  store,
		log:      logging.GetLogger(),
	}
}

// IndexURL 返回分类的版本索引页
func (c *Client) IndexURL(category string) string {
	return expand(c.config.IndexURL, category, "")
}

// FileURL 返回指定版本的标题文件地址
func (c *Client) FileURL(category, version string) string {
	return expand(c.config.FileURL, category, version)
}

// FileName 返回下载文件在存储中的名称
func (c *Client) FileName(category, version string) string {
	return path.Base(c.FileURL(category, version))
}

// FetchVersion 从索引页获取最新版本
func (c *Client) FetchVersion(ctx context.Context, category string) (string, error) {
	url := c.IndexURL(category)

	resp, err := c.get(ctx, c.index, url)
	if err != nil {
		return "", models.NewTransientError(models.StageDownload, category, err)
	}
	defer resp.Body.Close()

	versions, err := ParseVersions(resp.Body)
	if err != nil {
		return "", models.NewTransientError(models.StageDownload, category, err)
	}
	if len(versions) == 0 {
		return "", models.NewTransientError(models.StageDownload, category, models.ErrNoVersion)
	}

	latest := Latest(versions)
	c.log.WithFields(logrus.Fields{
		logging.FieldCategory: category,
		logging.FieldVersion:  latest,
	}).Info("Fetched latest version")
	return latest, nil
}

// Download 下载标题文件到存储，已存在时直接复用
func (c *Client) Download(ctx context.Context, category, version string) (storage.FileInfo, error) {
	name := c.FileName(category, version)
	fields := logrus.Fields{
		logging.FieldCategory: category,
		logging.FieldVersion:  version,
		logging.FieldFile:     name,
	}

	if info, err := c.storage.Stat(name); err == nil {
		c.log.WithFields(fields).Warn("File exists, skip download")
		return info, nil
	}

	url := c.FileURL(category, version)
	resp, err := c.get(ctx, c.download, url)
	if err != nil {
		return storage.FileInfo{}, models.NewTransientError(models.StageDownload, category, err)
	}
	defer resp.Body.Close()

	start := time.Now()
	info, err := c.storage.Save(resp.Body, name)
	if err != nil {
		return storage.FileInfo{}, models.NewTransientError(models.StageDownload, category, err)
	}

	fields["size"] = info.Size
	fields["elapsed"] = time.Since(start).String()
	c.log.WithFields(fields).Info("Downloaded file")
	return info, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// StatusError 非2xx响应
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// ParseVersions 解析索引页中所有数字目录链接
func ParseVersions(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	var versions []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if m := versionHref.FindStringSubmatch(attr.Val); m != nil {
					versions = append(versions, m[1])
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return versions, nil
}

// Latest 返回最大的版本号
func Latest(versions []string) string {
	latest := ""
	for _, v := range versions {
		if len(v) > len(latest) || (len(v) == len(latest) && v > latest) {
			latest = v
		}
	}
	return latest
}

func expand(tmpl, category, version string) string {
	return strings.NewReplacer("{cate}", category, "{date}", version).Replace(tmpl)
}
