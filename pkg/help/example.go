package help

// ExampleConfig is the annotated starter configuration printed by the
// init command. It documents every recognized option with its default.
const ExampleConfig = `# wp2presta configuration

wordpress:
  url: "https://old-site.example.com"
  # Optional application-password credentials for protected content.
  username: ""
  app_password: ""
  # Also migrate posts, not just pages.
  include_posts: false

prestashop:
  url: "https://shop.example.com"
  api_key: "YOUR_WEBSERVICE_KEY"
  default_lang_id: 1       # language id for CMS/product text
  cms_category_id: 1       # fallback CMS category

migration:
  dry_run: false
  log_file: "migration.log"
  download_images: true
  image_temp_dir: "temp_images"
  # Copy downloaded images into a local PrestaShop install:
  image_target_dir: ""     # e.g. /var/www/prestashop/img/cms
  # Or upload them over FTP (explicit TLS attempted first):
  ftp_host: ""
  ftp_user: ""
  ftp_password: ""
  ftp_remote_path: "img/cms"

mapping:
  # Destination for items no rule matches: cms, product, or skip.
  default: "cms"
  rules:
    - name: "legal pages"
      target: "skip"
      slugs: ["privacy-policy", "terms-of-service"]

    - name: "company pages"
      target: "cms"
      slugs: ["about-us", "our-story"]
      cms_category_id: 2

    - name: "product guides"
      target: "product"
      patterns: ["guide-*"]
      match_by: "name"     # name, reference, or id
      # Pin specific slugs to a product id or reference:
      product_map:
        guide-blue-widget: 42
        guide-red-widget: "REF-RED-1"
`
