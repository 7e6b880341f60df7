package dialect

import "github.com/felixgeelhaar/scriptsmith/internal/requirement"

// Built-in dialect names
const (
	Playwright = "playwright"
	Puppeteer  = "puppeteer"
)

// PlaywrightProfile returns the Playwright-style dialect
func PlaywrightProfile() *Definition {
	return &Definition{
		Key:       Playwright,
		Label:     "Playwright",
		Signature: "async function runTest(page, expect)",
		Structure: `async function runTest(page, expect) {
  try {
    // Navigation
    await page.goto('{{BASE_URL}}');
    await page.waitForLoadState('networkidle');

    // Authentication (if credentials provided)

    // Your generated test code here

    console.log('🎉 All tests completed successfully!');
  } catch (error) {
    console.error('❌ Test failed:', error.message);
    throw error;
  }
}`,
		SelectorRules: []string{
			"Use smart selectors with fallbacks, joined by commas",
			"Headlines: 'h1, .headline, [data-testid=\"headline\"], [role=\"heading\"]'",
			"Subheadings: 'h2, h3, .subheading, [data-testid=\"subheading\"]'",
			"CTA Buttons: 'button, [role=\"button\"], .cta, .btn-primary, [data-testid=\"cta\"]'",
			"Forms: 'form, .form, [data-testid=\"form\"]'",
			"Navigation: 'nav, .nav, [role=\"navigation\"]'",
			"Include console.log for each successful step",
			"Use await expect(locator).toBeVisible() for visibility checks",
			"Use await expect(locator).toContainText('text') for text validation",
			"Use waitForLoadState('networkidle') after navigation and interactions",
			"Keep the try/catch wrapper and rethrow the error",
			"Generate serverless-ready code with no imports",
		},
		TagGuidance: map[requirement.Tag]string{
			requirement.Responsive: `const viewports = [
  { name: 'Mobile', width: 375, height: 667 },
  { name: 'Tablet', width: 768, height: 1024 },
  { name: 'Desktop', width: 1280, height: 800 }
];
for (const viewport of viewports) {
  await page.setViewportSize({ width: viewport.width, height: viewport.height });
  await expect(page.locator('h1, .headline').first()).toBeVisible();
  console.log('✓ ' + viewport.name + ' view - layout responsive');
}`,
			requirement.Accessibility: `const title = await page.title();
console.log('✓ Page title: ' + title);
const imagesWithoutAlt = await page.locator('img:not([alt])').count();
console.log('✓ Images without alt text: ' + imagesWithoutAlt);`,
			requirement.Interactive: `const cta = page.locator('button, [role="button"], .cta, .btn-primary, [data-testid="cta"]').first();
await expect(cta).toBeVisible();
await cta.click();
await page.waitForLoadState('networkidle');
console.log('✓ Call to action clicked');`,
			requirement.Forms: `await page.fill('[name="email"], #email', 'test@example.com');
await page.click('[type="submit"], button[type="submit"]');
await page.waitForLoadState('networkidle');
console.log('✓ Form submission successful');`,
		},
		ForbiddenPatterns: []string{
			"page.waitForNavigation",
			"page.type(",
			"page.$(",
			"page.$$(",
			"page.setViewport(",
			"page.waitForTimeout(",
		},
		RubricItems: []string{
			"Proper serverless function structure: async function runTest(page, expect) with try-catch",
			"Correct Playwright API usage (page.goto, page.locator, page.waitForLoadState, etc.)",
			"Smart selectors with fallbacks (multiple selectors separated by commas)",
			"Proper async/await usage throughout",
			"Console.log statements for debugging and progress tracking",
			"Error handling with meaningful error messages",
			"Proper use of expect assertions for validation",
			"Complete test coverage based on the original requirements",
			"Proper navigation patterns with waitForLoadState('networkidle')",
			"Function completeness (no truncated or incomplete code)",
		},
		Exemptions: []string{
			"Missing test() or test.describe() blocks (this is intentional)",
			"Missing test runner setup (this is serverless)",
			"Hardcoded URLs (baseURL is passed as parameter)",
			"Function format instead of test blocks",
		},
		Waits:         []string{"waitForLoadState", "waitForSelector", ".waitFor("},
		Marker:        "console.log",
		ErrorHandling: true,
		DefaultTemp:   0.1,
		LoginSteps: `await page.fill('[name="username"], [name="email"], #username, #email', '{{USERNAME}}');
await page.fill('[name="password"], #password', '{{PASSWORD}}');
await page.click('[type="submit"], button[type="submit"], .login-btn, .submit-btn');
await page.waitForLoadState('networkidle');
console.log('✓ Authentication completed');`,
		ScaffoldTemplate: playwrightScaffold,
	}
}

// PuppeteerProfile returns the Puppeteer-style dialect
func PuppeteerProfile() *Definition {
	return &Definition{
		Key:       Puppeteer,
		Label:     "Puppeteer",
		Signature: "async function runTest(page)",
		Structure: `async function runTest(page) {
  try {
    console.log('Starting test...');

    // Navigation
    await page.goto('{{BASE_URL}}', { waitUntil: 'networkidle0' });

    // Test implementation
    // Use clean selectors and proper waits

    console.log('Test completed successfully');
  } catch (error) {
    console.error('Test failed:', error.message);
    throw error;
  }
}`,
		SelectorRules: []string{
			"Use ONLY the function structure above: no imports, no external dependencies",
			"Use clean CSS selectors with fallbacks joined by commas, e.g. 'button[type=\"submit\"], [data-testid=\"login-btn\"], .login-button'",
			"Navigate with page.goto(url, { waitUntil: 'networkidle0' })",
			"Wait for elements with page.waitForSelector(selector, { visible: true }) before using them",
			"Type into inputs with page.type(selector, value)",
			"Wrap clicks that navigate in Promise.all with page.waitForNavigation({ waitUntil: 'networkidle0' })",
			"Change the viewport with page.setViewport({ width, height })",
			"Read DOM state with page.$eval and page.$$eval",
			"Add console.log statements for debugging",
			"Handle errors with a try/catch block and rethrow",
			"Use page.screenshot() for visual verification when needed",
		},
		TagGuidance: map[requirement.Tag]string{
			requirement.Responsive: `const viewports = [
  { name: 'Mobile', width: 375, height: 667 },
  { name: 'Desktop', width: 1920, height: 1080 }
];
for (const viewport of viewports) {
  await page.setViewport({ width: viewport.width, height: viewport.height });
  await page.waitForSelector('h1, .headline', { visible: true });
  console.log('✓ ' + viewport.name + ' view - layout responsive');
}`,
			requirement.Accessibility: `const focusable = await page.$$eval('button, a, input, select, textarea', (els) => els.length);
console.log('Found ' + focusable + ' focusable elements');
const unlabeled = await page.$$eval('button:not([aria-label]):empty', (els) => els.length);
console.log('Buttons without accessible name: ' + unlabeled);`,
			requirement.Interactive: `await page.waitForSelector('button, [role="button"], .cta, [data-testid="cta"]', { visible: true });
await page.click('button, [role="button"], .cta, [data-testid="cta"]');
console.log('Call to action clicked');`,
			requirement.Forms: `await page.waitForSelector('form, .form, [data-testid="form"]');
await page.type('[name="email"], #email', 'test@example.com');
await Promise.all([
  page.waitForNavigation({ waitUntil: 'networkidle0' }),
  page.click('[type="submit"], button[type="submit"]')
]);
console.log('Form submission successful');`,
		},
		ForbiddenPatterns: []string{
			"page.locator(",
			"waitForLoadState",
			"setViewportSize",
			"expect(",
			"page.fill(",
			"getByRole(",
		},
		RubricItems: []string{
			"Proper function structure: async function runTest(page) with try-catch",
			"Correct Puppeteer API usage (page.goto, page.waitForSelector, page.type, page.click, page.setViewport)",
			"No Playwright-only APIs (page.locator, waitForLoadState, setViewportSize, expect, page.fill, getByRole)",
			"Navigation uses page.goto with waitUntil: 'networkidle0'",
			"Selectors with fallbacks (multiple selectors separated by commas)",
			"Proper async/await usage throughout",
			"Console.log statements for debugging and progress tracking",
			"Error handling with meaningful error messages",
			"Complete test coverage based on the original requirements",
			"Function completeness (no truncated or incomplete code)",
		},
		Exemptions: []string{
			"Missing browser launch or page creation (the page is passed in)",
			"Missing test runner setup or assertion library",
			"Hardcoded URLs (the base URL is part of the scenario)",
		},
		Waits:         []string{"waitForSelector", "waitForNavigation", "waitUntil", "waitForFunction"},
		Marker:        "console.log",
		ErrorHandling: true,
		DefaultTemp:   0.3,
		LoginSteps: `await page.waitForSelector('[name="username"], [name="email"], #username, #email', { visible: true });
await page.type('[name="username"], [name="email"], #username, #email', '{{USERNAME}}');
await page.type('[name="password"], #password', '{{PASSWORD}}');
await Promise.all([
  page.waitForNavigation({ waitUntil: 'networkidle0' }),
  page.click('[type="submit"], button[type="submit"], .login-btn, .submit-btn')
]);
console.log('Authentication completed');`,
		ScaffoldTemplate: puppeteerScaffold,
	}
}

const playwrightScaffold = `async function runTest(page, expect) {
  try {
    // Scenario: {{oneline .Narrative}}
    // Priority: {{.Priority}}
    await page.goto('{{quote .URL}}');
    await page.waitForLoadState('networkidle');
    console.log('✓ Page loaded');
{{- if .HasCredentials}}

    await page.fill('[name="username"], [name="email"], #username, #email', '{{quote .Username}}');
    await page.fill('[name="password"], #password', '{{quote .Password}}');
    await page.click('[type="submit"], button[type="submit"], .login-btn, .submit-btn');
    await page.waitForLoadState('networkidle');
    console.log('✓ Authentication completed');
{{- end}}

    const headline = page.locator('h1, .headline, [data-testid="headline"], [role="heading"]').first();
    await expect(headline).toBeVisible();
    console.log('✓ Headline visible');
{{- if .Responsive}}

    const viewports = [
      { name: 'Mobile', width: 375, height: 667 },
      { name: 'Tablet', width: 768, height: 1024 },
      { name: 'Desktop', width: 1280, height: 800 }
    ];
    for (const viewport of viewports) {
      await page.setViewportSize({ width: viewport.width, height: viewport.height });
      await expect(page.locator('h1, .headline').first()).toBeVisible();
      console.log('✓ ' + viewport.name + ' view - layout responsive');
    }
{{- end}}
{{- if .Accessibility}}

    const title = await page.title();
    console.log('✓ Page title: ' + title);
    const imagesWithoutAlt = await page.locator('img:not([alt])').count();
    console.log('✓ Images without alt text: ' + imagesWithoutAlt);
{{- end}}
{{- if .Interactive}}

    const cta = page.locator('button, [role="button"], .cta, .btn-primary, [data-testid="cta"]').first();
    await expect(cta).toBeVisible();
    await cta.click();
    await page.waitForLoadState('networkidle');
    console.log('✓ Call to action clicked');
{{- end}}
{{- if .Forms}}

    const form = page.locator('form, .form, [data-testid="form"]').first();
    await expect(form).toBeVisible();
    await page.fill('[name="email"], #email', 'test@example.com');
    await page.click('[type="submit"], button[type="submit"]');
    await page.waitForLoadState('networkidle');
    console.log('✓ Form submission successful');
{{- end}}

    console.log('🎉 All tests completed successfully!');
  } catch (error) {
    console.error('❌ Test failed:', error.message);
    throw error;
  }
}
`

const puppeteerScaffold = `async function runTest(page) {
  try {
    console.log('Starting test...');
    // Scenario: {{oneline .Narrative}}
    // Priority: {{.Priority}}
    await page.goto('{{quote .URL}}', { waitUntil: 'networkidle0' });
    console.log('Page loaded');
{{- if .HasCredentials}}

    await page.waitForSelector('[name="username"], [name="email"], #username, #email', { visible: true });
    await page.type('[name="username"], [name="email"], #username, #email', '{{quote .Username}}');
    await page.type('[name="password"], #password', '{{quote .Password}}');
    await Promise.all([
      page.waitForNavigation({ waitUntil: 'networkidle0' }),
      page.click('[type="submit"], button[type="submit"], .login-btn, .submit-btn')
    ]);
    console.log('Authentication completed');
{{- end}}

    await page.waitForSelector('h1, .headline, [data-testid="headline"], [role="heading"]', { visible: true });
    console.log('Headline visible');
{{- if .Responsive}}

    const viewports = [
      { name: 'Mobile', width: 375, height: 667 },
      { name: 'Desktop', width: 1920, height: 1080 }
    ];
    for (const viewport of viewports) {
      await page.setViewport({ width: viewport.width, height: viewport.height });
      await page.waitForSelector('h1, .headline', { visible: true });
      console.log(viewport.name + ' view - layout responsive');
    }
{{- end}}
{{- if .Accessibility}}

    const title = await page.title();
    console.log('Page title: ' + title);
    const focusable = await page.$$eval('button, a, input, select, textarea', (els) => els.length);
    console.log('Found ' + focusable + ' focusable elements');
{{- end}}
{{- if .Interactive}}

    await page.waitForSelector('button, [role="button"], .cta, [data-testid="cta"]', { visible: true });
    await page.click('button, [role="button"], .cta, [data-testid="cta"]');
    console.log('Call to action clicked');
{{- end}}
{{- if .Forms}}

    await page.waitForSelector('form, .form, [data-testid="form"]');
    await page.type('[name="email"], #email', 'test@example.com');
    await Promise.all([
      page.waitForNavigation({ waitUntil: 'networkidle0' }),
      page.click('[type="submit"], button[type="submit"]')
    ]);
    console.log('Form submission successful');
{{- end}}

    console.log('Test completed successfully');
  } catch (error) {
    console.error('Test failed:', error.message);
    throw error;
  }
}
`
